package search

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pypln-web/internal/model"
	"pypln-web/internal/properties"
)

type fakeDocs struct {
	docs    []model.Document
	indexed map[uint]bool
}

func (f *fakeDocs) ListNotIndexed() ([]model.Document, error) {
	var out []model.Document
	for _, d := range f.docs {
		if !f.indexed[d.ID] {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocs) MarkIndexed(id uint) error {
	f.indexed[id] = true
	return nil
}

func TestIndexerPromotesReadyDocuments(t *testing.T) {
	ctx := context.Background()
	store := properties.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "id:1:_properties", []string{"text"}))
	require.NoError(t, store.Set(ctx, "id:1:text", "this is the first test."))
	require.NoError(t, store.Set(ctx, "id:3:_properties", []string{"mimetype"}))

	docs := &fakeDocs{
		docs: []model.Document{
			{ID: 1, Filename: "first.txt"},
			{ID: 2, Filename: "second.txt"},
			{ID: 3, Filename: "third.txt"},
		},
		indexed: map[uint]bool{},
	}
	idx, err := NewMemOnly()
	require.NoError(t, err)
	defer idx.Close()
	client, _ := newRedis(t)
	var out bytes.Buffer

	ix := NewIndexer(docs, idx, properties.StaticOpener(store), NewRedisLock(client, "lock", time.Minute), &out, nil)
	report, err := ix.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, []uint{1}, report.Indexed)
	assert.Equal(t, []uint{2, 3}, report.Pending)
	assert.Equal(t, "Documents to be indexed: 3\n"+
		"  Indexed id=1, filename=first.txt\n"+
		"  Not indexed (text not ready) id=2, filename=second.txt\n"+
		"  Not indexed (text not ready) id=3, filename=third.txt\n", out.String())

	hits, err := idx.Search("first")
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, hitIDs(hits))

	require.NoError(t, store.Set(ctx, "id:2:_properties", []string{"text"}))
	require.NoError(t, store.Set(ctx, "id:2:text", "this is the second test."))
	report, err = ix.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, []uint{2}, report.Indexed)
	assert.Equal(t, []uint{3}, report.Pending)
}

func TestIndexerReportsNothingToDo(t *testing.T) {
	idx, err := NewMemOnly()
	require.NoError(t, err)
	defer idx.Close()
	client, _ := newRedis(t)
	var out bytes.Buffer

	ix := NewIndexer(&fakeDocs{indexed: map[uint]bool{}}, idx, properties.StaticOpener(properties.NewMemoryStore()),
		NewRedisLock(client, "lock", time.Minute), &out, nil)
	report, err := ix.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Indexed)
	assert.Equal(t, "All documents are already indexed.\n", out.String())
}

func TestIndexerSkipsWhenLockIsHeld(t *testing.T) {
	ctx := context.Background()
	idx, err := NewMemOnly()
	require.NoError(t, err)
	defer idx.Close()
	client, mr := newRedis(t)

	other := NewRedisLock(client, "lock", time.Minute)
	ok, err := other.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	var out bytes.Buffer
	docs := &fakeDocs{docs: []model.Document{{ID: 1}}, indexed: map[uint]bool{}}
	ix := NewIndexer(docs, idx, properties.StaticOpener(properties.NewMemoryStore()),
		NewRedisLock(client, "lock", time.Minute), &out, nil)

	report, err := ix.Run(ctx)
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, "Another indexing process is running. Exiting.\n", out.String())

	held, err := mr.Get("lock")
	require.NoError(t, err)
	assert.Equal(t, other.Token(), held)
}

func TestIndexerReleasesLockAfterRun(t *testing.T) {
	idx, err := NewMemOnly()
	require.NoError(t, err)
	defer idx.Close()
	client, mr := newRedis(t)

	ix := NewIndexer(&fakeDocs{indexed: map[uint]bool{}}, idx, properties.StaticOpener(properties.NewMemoryStore()),
		NewRedisLock(client, "lock", time.Minute), nil, nil)
	_, err = ix.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, mr.Exists("lock"))
}
