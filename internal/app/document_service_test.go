package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUploadRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")

	doc := f.upload(t, owner, nil, "42.txt", "Bring us a shrubbery!")
	assert.Equal(t, owner.ID, doc.OwnerID)
	assert.Equal(t, "owner", doc.Owner.Username)
	assert.Equal(t, "42.txt", doc.Filename)
	assert.Equal(t, int64(len("Bring us a shrubbery!")), doc.Size)
	assert.True(t, strings.HasSuffix(doc.Blob, "_42.txt"))
	assert.Equal(t, []uint{doc.ID}, f.pipeline.created)

	body, err := f.storage.Open(ctx, doc.Blob)
	require.NoError(t, err)
	assert.Equal(t, "Bring us a shrubbery!", readAll(t, body))
}

func TestDocumentHookFailureDoesNotFailUpload(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	f.pipeline.err = errors.New("broker down")

	doc := f.upload(t, owner, nil, "42.txt", "Bring us a shrubbery!")
	assert.NotZero(t, doc.ID)
}

func TestDocumentCorpusMustBelongToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	corpus, err := f.corpus.Create(bob.ID, CorpusInput{Name: "Bob's"})
	require.NoError(t, err)

	_, err = f.documents.Create(ctx, alice.ID, &corpus.ID, BytesUpload("a.txt", []byte("a")))
	assert.ErrorIs(t, err, ErrCorpusNotOwned)

	doc := f.upload(t, alice, nil, "a.txt", "a")
	_, err = f.documents.Update(doc.ID, alice.ID, &corpus.ID)
	assert.ErrorIs(t, err, ErrCorpusNotOwned)

	own, err := f.corpus.Create(alice.ID, CorpusInput{Name: "Alice's"})
	require.NoError(t, err)
	moved, err := f.documents.Update(doc.ID, alice.ID, &own.ID)
	require.NoError(t, err)
	assert.True(t, moved.InCorpus(own.ID))
}

func TestDocumentGetHidesOtherOwners(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	doc := f.upload(t, alice, nil, "a.txt", "a")

	_, err := f.documents.Get(doc.ID, bob.ID)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.ErrorIs(t, f.documents.Delete(context.Background(), doc.ID, bob.ID), ErrDocumentNotFound)
}

func TestDocumentDeleteRemovesBlob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	doc := f.upload(t, alice, nil, "a.txt", "a")

	require.NoError(t, f.documents.Delete(ctx, doc.ID, alice.ID))

	exists, err := f.storage.Exists(ctx, doc.Blob)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDocumentListSortsAndPages(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		f.upload(t, alice, nil, name, name)
	}

	page, err := f.documents.List(alice.ID, ListQuery{Sort: "unknown", Page: FirstPage, PerPage: "2"})
	require.NoError(t, err)
	require.Len(t, page.Documents, 2)
	assert.Equal(t, "filename", page.Sort)
	assert.Equal(t, 2, page.Page.Pages)
	assert.Less(t, page.Documents[0].Blob, page.Documents[1].Blob)

	last, err := f.documents.List(alice.ID, ListQuery{Sort: "date_desc", Page: "last", PerPage: "2"})
	require.NoError(t, err)
	require.Len(t, last.Documents, 1)
	assert.Equal(t, 2, last.Page.Number)

	_, err = f.documents.List(alice.ID, ListQuery{Page: "3", PerPage: "2"})
	assert.ErrorIs(t, err, ErrEmptyPage)
	_, err = f.documents.List(alice.ID, ListQuery{Page: "first"})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestDocumentDownloadContentType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	doc := f.upload(t, alice, nil, "grail.json", `{"holy": true}`)

	file, err := f.documents.Download(ctx, doc.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "grail.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)
	assert.Equal(t, `{"holy": true}`, readAll(t, file.Body))

	f.setProperty(t, doc.ID, "mimetype", "application/x-grail")
	file, err = f.documents.Download(ctx, doc.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "application/x-grail", file.ContentType)
	_ = readAll(t, file.Body)
}

func TestCreateIndexedChecksIndexName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	_, err := f.documents.CreateIndexed(ctx, alice, IndexInput{
		IndexName: "bob_index",
		DocType:   "article",
		File:      BytesUpload("a.txt", []byte("a")),
	})
	require.ErrorIs(t, err, ErrInvalidIndexName)
	assert.Equal(t, IndexNameErrorMessage, err.Error())

	doc, err := f.documents.CreateIndexed(ctx, alice, IndexInput{
		IndexName: "alice_index",
		DocType:   "article",
		File:      BytesUpload("a.txt", []byte("a")),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice_index", doc.IndexName)
	assert.Equal(t, []uint{doc.ID}, f.pipeline.indexed)
	assert.Empty(t, f.pipeline.created)
}

func TestDocumentFormCreatesOneDocumentPerFile(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")
	files := make([]Upload, 0, 3)
	for i := 0; i < 3; i++ {
		files = append(files, BytesUpload(fmt.Sprintf("%d.txt", i), []byte("content")))
	}

	form := f.documents.NewDocumentForm(owner, nil, files)
	require.True(t, form.IsValid())
	docs, err := form.Save(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	for _, doc := range docs {
		assert.Equal(t, owner.ID, doc.OwnerID)
		assert.NotZero(t, doc.ID)
	}
}

func TestDocumentFormValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")

	empty := f.documents.NewDocumentForm(owner, nil, nil)
	assert.False(t, empty.IsValid())
	assert.Equal(t, []string{"This field is required."}, empty.Errors()["blob"])

	ok := f.documents.NewDocumentForm(owner, nil, []Upload{BytesUpload(strings.Repeat("a", 95)+".txt", nil)})
	assert.True(t, ok.IsValid())

	long := f.documents.NewDocumentForm(owner, nil, []Upload{BytesUpload(strings.Repeat("a", 96)+".txt", nil)})
	assert.False(t, long.IsValid())
	assert.Contains(t, long.Errors(), "blob")
}

func TestDocumentFormSaveRequiresValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner")

	form := f.documents.NewDocumentForm(owner, nil, []Upload{BytesUpload("a.txt", []byte("a"))})
	_, err := form.Save(context.Background(), true)
	require.ErrorIs(t, err, ErrUnvalidatedForm)
	assert.Equal(t, "cannot save unvalidated form data", err.Error())

	require.True(t, form.IsValid())
	docs, err := form.Save(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Zero(t, docs[0].ID)
	assert.Equal(t, owner.ID, docs[0].OwnerID)
}

func TestDocumentCreateRejectsLongFilename(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.user(t, "owner")
	name := strings.Repeat("a", 150) + ".txt"

	_, err := f.documents.Create(ctx, owner.ID, nil, BytesUpload(name, []byte("a")))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Ensure this filename has at most 99 characters (it has 154)."}, verr.Fields["blob"])

	_, err = f.documents.CreateIndexed(ctx, owner, IndexInput{
		IndexName: "owner_index",
		DocType:   "article",
		File:      BytesUpload(name, []byte("a")),
	})
	require.ErrorAs(t, err, &verr)

	docs, err := f.docs.ListNotIndexed()
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Empty(t, f.pipeline.created)
}
