package app

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"pypln-web/internal/blob"
	"pypln-web/internal/model"
	sqliteClient "pypln-web/internal/platform/sqlite"
	"pypln-web/internal/properties"
	"pypln-web/internal/repository"
)

type fakePipeline struct {
	created  []uint
	indexed  []uint
	freqDist map[uint][]string
	err      error
}

func (p *fakePipeline) DocumentCreated(_ context.Context, doc *model.Document) error {
	p.created = append(p.created, doc.ID)
	return p.err
}

func (p *fakePipeline) CreateIndexingPipeline(_ context.Context, doc *model.Document) error {
	p.indexed = append(p.indexed, doc.ID)
	return p.err
}

func (p *fakePipeline) CorpusFreqDist(_ context.Context, corpusID uint, blobIDs []string) error {
	if p.freqDist == nil {
		p.freqDist = make(map[uint][]string)
	}
	p.freqDist[corpusID] = blobIDs
	return p.err
}

type fixture struct {
	db       *gorm.DB
	users    *repository.UserRepository
	corpora  *repository.CorpusRepository
	docs     *repository.DocumentRepository
	storage  *blob.Local
	store    *properties.MemoryStore
	pipeline *fakePipeline

	documents *DocumentService
	corpus    *CorpusService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqliteClient.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, model.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	storage, err := blob.NewLocal(t.TempDir())
	require.NoError(t, err)

	f := &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		corpora:  repository.NewCorpusRepository(db),
		docs:     repository.NewDocumentRepository(db),
		storage:  storage,
		store:    properties.NewMemoryStore(),
		pipeline: &fakePipeline{},
	}
	opener := properties.StaticOpener(f.store)
	f.documents = NewDocumentService(f.docs, f.corpora, storage, opener, f.pipeline, []DocumentHook{f.pipeline}, nil)
	f.corpus = NewCorpusService(f.corpora, f.docs, opener, f.pipeline)
	return f
}

func (f *fixture) user(t *testing.T, username string) *model.User {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, f.users.Create(user))
	return user
}

func (f *fixture) setProperty(t *testing.T, docID uint, key string, value any) {
	t.Helper()
	require.NoError(t, f.store.Set(context.Background(), properties.DocumentNamespace.Key(docID, key), value))
}

func (f *fixture) upload(t *testing.T, owner *model.User, corpusID *uint, name, content string) *model.Document {
	t.Helper()
	doc, err := f.documents.Create(context.Background(), owner.ID, corpusID, BytesUpload(name, []byte(content)))
	require.NoError(t, err)
	return doc
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}
