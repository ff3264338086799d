package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	salt, err := hasher.GenerateSalt()
	require.NoError(t, err)
	require.Len(t, salt, 64) // 32 bytes hex-encoded

	hash, err := hasher.Hash(salt, "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.NoError(t, hasher.Compare(hash, salt, "correct horse battery"))
	assert.Error(t, hasher.Compare(hash, salt, "wrong password"))
	assert.Error(t, hasher.Compare(hash, "other-salt", "correct horse battery"))
}

func TestBcryptHasher_SaltsAreUnique(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	a, err := hasher.GenerateSalt()
	require.NoError(t, err)
	b, err := hasher.GenerateSalt()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
