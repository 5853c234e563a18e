package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pypln-web/internal/properties"
)

func TestCorpusNamesAreUniquePerOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	corpus, err := f.corpus.Create(alice.ID, CorpusInput{Name: "Test", Description: "first"})
	require.NoError(t, err)
	assert.Equal(t, "alice", corpus.Owner.Username)

	_, err = f.corpus.Create(alice.ID, CorpusInput{Name: "Test", Description: "again"})
	require.ErrorIs(t, err, ErrCorpusNameTaken)
	assert.Equal(t, "Corpora names must be unique for each user.", err.Error())

	_, err = f.corpus.Create(bob.ID, CorpusInput{Name: "Test", Description: "other owner"})
	assert.NoError(t, err)
}

func TestCorpusValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")

	_, err := f.corpus.Create(alice.ID, CorpusInput{Name: "  "})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{"This field is required."}, verr.Fields["name"])

	_, err = f.corpus.Create(alice.ID, CorpusInput{Name: strings.Repeat("n", 61)})
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "name")
}

func TestCorpusUpdateRename(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	first, err := f.corpus.Create(alice.ID, CorpusInput{Name: "First"})
	require.NoError(t, err)
	_, err = f.corpus.Create(alice.ID, CorpusInput{Name: "Second"})
	require.NoError(t, err)

	_, err = f.corpus.Update(first.ID, alice.ID, CorpusInput{Name: "Second"})
	assert.ErrorIs(t, err, ErrCorpusNameTaken)

	updated, err := f.corpus.Update(first.ID, alice.ID, CorpusInput{Name: "First", Description: "kept name"})
	require.NoError(t, err)
	assert.Equal(t, "kept name", updated.Description)
}

func TestCorpusOwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	corpus, err := f.corpus.Create(alice.ID, CorpusInput{Name: "Test"})
	require.NoError(t, err)

	_, err = f.corpus.Get(corpus.ID, bob.ID)
	assert.ErrorIs(t, err, ErrCorpusNotFound)
	assert.ErrorIs(t, f.corpus.Delete(corpus.ID, bob.ID), ErrCorpusNotFound)
}

func TestCorpusDeleteKeepsDocuments(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	corpus, err := f.corpus.Create(alice.ID, CorpusInput{Name: "Test"})
	require.NoError(t, err)
	doc := f.upload(t, alice, &corpus.ID, "42.txt", "Bring us a shrubbery!")

	require.NoError(t, f.corpus.Delete(corpus.ID, alice.ID))

	kept, err := f.documents.Get(doc.ID, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CorpusID)
}

func TestCorpusFreqDist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	corpus, err := f.corpus.Create(alice.ID, CorpusInput{Name: "Test"})
	require.NoError(t, err)
	doc := f.upload(t, alice, &corpus.ID, "42.txt", "Bring us a shrubbery!")

	_, err = f.corpus.FreqDist(ctx, corpus.ID, alice.ID)
	assert.ErrorIs(t, err, ErrFreqDistNotReady)

	require.NoError(t, f.corpus.RequestFreqDist(ctx, corpus.ID, alice.ID))
	assert.Equal(t, []string{doc.FileID}, f.pipeline.freqDist[corpus.ID])

	key := properties.CorpusNamespace.Key(corpus.ID, "freqdist")
	require.NoError(t, f.store.Set(ctx, key, [][]any{{"shrubbery", 1}}))
	value, err := f.corpus.FreqDist(ctx, corpus.ID, alice.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `[["shrubbery", 1]]`, string(value))
}

func TestCorpusFormReportsDuplicateName(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	_, err := f.corpus.Create(alice.ID, CorpusInput{Name: "Test"})
	require.NoError(t, err)

	form := f.corpus.NewCorpusForm(alice, CorpusInput{Name: "Test"})
	require.True(t, form.IsValid())
	_, err = form.Save()
	assert.ErrorIs(t, err, ErrCorpusNameTaken)
	assert.Equal(t, []string{"Corpora names must be unique for each user."}, form.Errors()["__all__"])
}
