package jwtutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, 7, "user")
	require.NoError(t, err)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "user", claims.Username)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", time.Hour, 7, "user")
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", -time.Minute, 7, "user")
	require.NoError(t, err)

	_, err = ParseToken("secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
