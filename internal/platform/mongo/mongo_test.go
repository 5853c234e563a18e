package mongo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireTestDatabase(t *testing.T) {
	assert.NoError(t, RequireTestDatabase("pypln_test"))
	assert.NoError(t, RequireTestDatabase("test"))

	err := RequireTestDatabase("pypln")
	assert.ErrorIs(t, err, ErrImproperlyConfigured)
	assert.Contains(t, err.Error(), "pypln")
}
