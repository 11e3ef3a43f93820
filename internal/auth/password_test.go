// ABOUTME: Tests for bcrypt password helpers
// ABOUTME: Covers hashing, matching, mismatches, and the unknown-account path

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "pw123", hash)
	assert.NoError(t, CheckPassword(hash, "pw123"))
	assert.ErrorIs(t, CheckPassword(hash, "wrong"), ErrPasswordMismatch)
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)
	second, err := HashPassword("pw123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCheckPassword_EmptyHash(t *testing.T) {
	assert.ErrorIs(t, CheckPassword("", "pw123"), ErrPasswordMismatch)
}
