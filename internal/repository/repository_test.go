package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pypln-web/internal/model"
	sqliteClient "pypln-web/internal/platform/sqlite"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := sqliteClient.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).Create(user))
	return user
}

func createCorpus(t *testing.T, db *gorm.DB, owner *model.User, name string) *model.Corpus {
	t.Helper()
	corpus := &model.Corpus{Name: name, Description: "desc", OwnerID: owner.ID}
	require.NoError(t, NewCorpusRepository(db).Create(corpus))
	return corpus
}

func createDocument(t *testing.T, db *gorm.DB, owner *model.User, corpus *model.Corpus, blob string) *model.Document {
	t.Helper()
	doc := &model.Document{Blob: blob, Filename: blob, OwnerID: owner.ID}
	if corpus != nil {
		doc.CorpusID = &corpus.ID
	}
	require.NoError(t, NewDocumentRepository(db).Create(doc))
	return doc
}
