package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("p1-secret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "p1-secret", hash)

	assert.True(t, CheckPasswordHash("p1-secret", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1, err := HashPassword("p1-secret")
	require.NoError(t, err)
	h2, err := HashPassword("p1-secret")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCheckPasswordHash_MalformedDigest(t *testing.T) {
	assert.False(t, CheckPasswordHash("p1-secret", "not-a-bcrypt-hash"))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, ValidatePassword("12345"))
	assert.NoError(t, ValidatePassword("123456"))
}
