package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pypln-web/internal/properties"
)

func countingOpener(store properties.Store, calls *int) properties.Opener {
	return properties.OpenerFunc(func(context.Context) (properties.Store, error) {
		*calls++
		return store, nil
	})
}

func TestDocumentPropertiesRequiresSavedDocument(t *testing.T) {
	doc := &Document{Blob: "42.txt"}
	_, err := doc.Properties(properties.StaticOpener(properties.NewMemoryStore()))
	assert.ErrorIs(t, err, properties.ErrUnsaved)
}

func TestDocumentPropertiesOpensStoreOnce(t *testing.T) {
	ctx := context.Background()
	store := properties.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "id:5:text", "hello"))
	calls := 0
	doc := &Document{ID: 5}

	proxy, err := doc.Properties(countingOpener(store, &calls))
	require.NoError(t, err)
	assert.Equal(t, 0, calls)

	_, err = proxy.Get(ctx, "text")
	require.NoError(t, err)

	again, err := doc.Properties(countingOpener(store, &calls))
	require.NoError(t, err)
	_, err = again.Get(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestCorpusPropertiesUsesCorpusNamespace(t *testing.T) {
	ctx := context.Background()
	store := properties.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "corpus_id:2:freqdist", [][]any{{"spam", 2}}))

	corpus := &Corpus{ID: 2}
	proxy, err := corpus.Properties(properties.StaticOpener(store))
	require.NoError(t, err)
	ok, err := proxy.Has(ctx, "freqdist")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = (&Corpus{}).Properties(properties.StaticOpener(store))
	assert.ErrorIs(t, err, properties.ErrUnsaved)
}

func TestDocumentInCorpus(t *testing.T) {
	id := uint(3)
	assert.True(t, (&Document{CorpusID: &id}).InCorpus(3))
	assert.False(t, (&Document{CorpusID: &id}).InCorpus(4))
	assert.False(t, (&Document{}).InCorpus(3))
}

func TestUserOwnsIndex(t *testing.T) {
	u := &User{Username: "alice"}
	assert.True(t, u.OwnsIndex("alice_articles"))
	assert.False(t, u.OwnsIndex("bob_articles"))
	assert.False(t, (&User{}).OwnsIndex("anything"))
}
