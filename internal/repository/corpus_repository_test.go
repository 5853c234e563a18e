package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pypln-web/internal/model"
)

func TestCorpusNameUniquePerOwner(t *testing.T) {
	db := newTestDB(t)
	repo := NewCorpusRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	createCorpus(t, db, alice, "Test")

	err := repo.Create(&model.Corpus{Name: "Test", OwnerID: alice.ID})
	assert.Error(t, err)

	require.NoError(t, repo.Create(&model.Corpus{Name: "Test", OwnerID: bob.ID}))
}

func TestCorpusNameTaken(t *testing.T) {
	db := newTestDB(t)
	repo := NewCorpusRepository(db)
	alice := createUser(t, db, "alice")
	corpus := createCorpus(t, db, alice, "Test")

	taken, err := repo.NameTaken(alice.ID, "Test", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.NameTaken(alice.ID, "Test", corpus.ID)
	require.NoError(t, err)
	assert.False(t, taken)

	taken, err = repo.NameTaken(alice.ID+1, "Test", 0)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestCorpusOwnershipScoping(t *testing.T) {
	db := newTestDB(t)
	repo := NewCorpusRepository(db)
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	corpus := createCorpus(t, db, alice, "Test")
	createCorpus(t, db, bob, "Other")

	got, err := repo.GetByIDAndOwner(corpus.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByIDAndOwner(corpus.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Owner.Username)

	list, err := repo.ListByOwner(alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Test", list[0].Name)
}

func TestCorpusUpdate(t *testing.T) {
	db := newTestDB(t)
	repo := NewCorpusRepository(db)
	alice := createUser(t, db, "alice")
	corpus := createCorpus(t, db, alice, "Test")

	corpus.Name = "Renamed"
	corpus.Description = ""
	require.NoError(t, repo.Update(corpus))

	got, err := repo.GetByIDAndOwner(corpus.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "", got.Description)
}

func TestCorpusDeleteDetachesDocuments(t *testing.T) {
	db := newTestDB(t)
	alice := createUser(t, db, "alice")
	corpus := createCorpus(t, db, alice, "Test")
	doc := createDocument(t, db, alice, corpus, "a.txt")

	require.NoError(t, NewCorpusRepository(db).Delete(corpus))

	got, err := NewDocumentRepository(db).GetByIDAndOwner(doc.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.CorpusID)
}
