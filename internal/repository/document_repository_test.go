package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pypln-web/internal/model"
)

func blobs(docs []model.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Blob)
	}
	return out
}

func TestDocumentListByOwnerOrdersAndPages(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	corpus := createCorpus(t, db, alice, "Test")
	createDocument(t, db, alice, corpus, "b.txt")
	createDocument(t, db, alice, nil, "c.txt")
	createDocument(t, db, alice, corpus, "a.txt")
	createDocument(t, db, bob, nil, "0.txt")

	docs, total, err := repo.ListByOwner(alice.ID, DocumentListOptions{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, blobs(docs))

	docs, _, err = repo.ListByOwner(alice.ID, DocumentListOptions{OrderColumn: "blob", Desc: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c.txt", "b.txt"}, blobs(docs))

	docs, total, err = repo.ListByOwner(alice.ID, DocumentListOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Equal(t, []string{"c.txt"}, blobs(docs))

	docs, total, err = repo.ListByOwner(alice.ID, DocumentListOptions{CorpusID: &corpus.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, []string{"a.txt", "b.txt"}, blobs(docs))
}

func TestDocumentListRejectsUnknownColumn(t *testing.T) {
	db := newTestDB(t)
	_, _, err := NewDocumentRepository(db).ListByOwner(1, DocumentListOptions{OrderColumn: "owner_id; drop table users"})
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestDocumentIndexingQueries(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	alice := createUser(t, db, "alice")
	first := createDocument(t, db, alice, nil, "a.txt")
	createDocument(t, db, alice, nil, "b.txt")

	pending, err := repo.ListNotIndexed()
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, repo.MarkIndexed(first.ID))
	pending, err = repo.ListNotIndexed()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "b.txt", pending[0].Blob)
}

func TestDocumentEach(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	alice := createUser(t, db, "alice")
	for _, name := range []string{"a", "b", "c"} {
		createDocument(t, db, alice, nil, name)
	}

	var seen []string
	require.NoError(t, repo.Each(2, func(doc *model.Document) error {
		seen = append(seen, doc.Blob)
		return nil
	}))
	assert.Equal(t, []string{"a", "b", "c"}, seen)

	stop := errors.New("stop")
	err := repo.Each(2, func(*model.Document) error { return stop })
	assert.ErrorIs(t, err, stop)

	count, err := repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestDocumentUpdateCorpusAndDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	alice := createUser(t, db, "alice")
	corpus := createCorpus(t, db, alice, "Test")
	doc := createDocument(t, db, alice, nil, "a.txt")

	doc.CorpusID = &corpus.ID
	require.NoError(t, repo.UpdateCorpus(doc))
	docs, err := repo.ListByCorpus(corpus.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, repo.Delete(doc))
	got, err := repo.GetByIDAndOwner(doc.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDocumentCountByOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewDocumentRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	corpus := createCorpus(t, db, alice, "Test")
	createDocument(t, db, alice, corpus, "a.txt")
	createDocument(t, db, alice, nil, "b.txt")
	createDocument(t, db, bob, nil, "c.txt")

	total, err := repo.CountByOwner(alice.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	inCorpus, err := repo.CountByOwner(alice.ID, &corpus.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), inCorpus)
}
