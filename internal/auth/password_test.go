package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$10$"))

	// Salted: the same password never hashes to the same value
	other, err := GeneratePasswordHash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

func TestComparePasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("secret1")
	require.NoError(t, err)

	assert.NoError(t, ComparePasswordHash([]byte(hash), "secret1"))
	assert.ErrorIs(t, ComparePasswordHash([]byte(hash), "secret2"), ErrPasswordMismatch)
}

func TestComparePasswordHash_MalformedHash(t *testing.T) {
	err := ComparePasswordHash([]byte("not-a-bcrypt-hash"), "secret1")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPasswordMismatch)
}

func TestGeneratePasswordHash_TooLong(t *testing.T) {
	_, err := GeneratePasswordHash(strings.Repeat("a", MaxPasswordBytes+1))

	assert.Error(t, err)
}
