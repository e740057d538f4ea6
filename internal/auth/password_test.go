package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_Hash(t *testing.T) {
	hasher := NewBcryptHasher()

	t.Run("produces bcrypt hash with fixed cost", func(t *testing.T) {
		digest, err := hasher.Hash("secret1")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(digest, "$2a$"))

		cost, err := bcrypt.Cost([]byte(digest))
		require.NoError(t, err)
		assert.Equal(t, BcryptCost, cost)
	})

	t.Run("same password produces different hashes (salt)", func(t *testing.T) {
		h1, err := hasher.Hash("samepassword")
		require.NoError(t, err)
		h2, err := hasher.Hash("samepassword")
		require.NoError(t, err)

		assert.NotEqual(t, h1, h2)
		assert.True(t, hasher.Verify("samepassword", h1))
		assert.True(t, hasher.Verify("samepassword", h2))
	})

	t.Run("does not contain plaintext", func(t *testing.T) {
		digest, err := hasher.Hash("plaintext-marker")
		require.NoError(t, err)
		assert.NotContains(t, digest, "plaintext-marker")
	})

	t.Run("rejects password over bcrypt limit", func(t *testing.T) {
		_, err := hasher.Hash(strings.Repeat("x", MaxPasswordBytes+1))
		assert.Error(t, err)
	})
}

func TestBcryptHasher_Verify(t *testing.T) {
	hasher := NewBcryptHasher()

	digest, err := hasher.Hash("correctpassword")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		assert.True(t, hasher.Verify("correctpassword", digest))
	})

	t.Run("incorrect password fails", func(t *testing.T) {
		assert.False(t, hasher.Verify("wrongpassword", digest))
	})

	t.Run("invalid hash format fails", func(t *testing.T) {
		assert.False(t, hasher.Verify("correctpassword", "not-a-valid-hash"))
	})

	t.Run("empty hash fails", func(t *testing.T) {
		assert.False(t, hasher.Verify("correctpassword", ""))
	})
}
