package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	stored, err := store.Save(ctx, "42.txt", strings.NewReader("Bring us a shrubbery!"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.Name, "_42.txt"))
	assert.Equal(t, stored.Name, stored.FileID)
	assert.EqualValues(t, len("Bring us a shrubbery!"), stored.Size)

	rc, err := store.Open(ctx, stored.Name)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "Bring us a shrubbery!", string(body))

	size, err := store.Size(ctx, stored.Name)
	require.NoError(t, err)
	assert.EqualValues(t, 21, size)
}

func TestLocalNamesAreUnique(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	a, err := store.Save(ctx, "same.txt", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := store.Save(ctx, "same.txt", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a.Name, b.Name)
}

func TestLocalDeleteAndExists(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	stored, err := store.Save(ctx, "dir/../../evil.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.Name, "_evil.txt"))

	ok, err := store.Exists(ctx, stored.Name)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, store.Delete(ctx, stored.Name))
	require.NoError(t, store.Delete(ctx, stored.Name))

	ok, err = store.Exists(ctx, stored.Name)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Open(ctx, stored.Name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "42.txt", BaseName("42.txt"))
	assert.Equal(t, "a.txt", BaseName(`C:\Users\me\a.txt`))
	assert.Equal(t, "blob", BaseName(""))
}
