package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCorpusRef(t *testing.T) {
	id, err := parseCorpusRef("")
	require.NoError(t, err)
	assert.Nil(t, id)

	for _, ref := range []string{"12", "/api/v1/corpora/12/", "http://testserver/api/v1/corpora/12"} {
		id, err := parseCorpusRef(ref)
		require.NoError(t, err, ref)
		require.NotNil(t, id, ref)
		assert.Equal(t, uint(12), *id, ref)
	}

	for _, ref := range []string{"/api/v1/documents/12/", "/api/v1/corpora/abc/", "camelot"} {
		_, err := parseCorpusRef(ref)
		assert.ErrorIs(t, err, errBadCorpusRef, ref)
	}
}

func TestSafeNext(t *testing.T) {
	assert.Equal(t, "/documents?page=2", safeNext("/documents?page=2"))
	assert.Equal(t, "/corpora", safeNext(""))
	assert.Equal(t, "/corpora", safeNext("//evil.example"))
	assert.Equal(t, "/corpora", safeNext("https://evil.example/"))
}
