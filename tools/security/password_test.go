package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := ComparePassword("hunter2", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = ComparePassword("wrong", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestComparePasswordBadEncoding(t *testing.T) {
	_, err := ComparePassword("x", "not-a-hash")
	require.Error(t, err)
}
