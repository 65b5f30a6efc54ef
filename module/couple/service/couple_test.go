package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInviteCode(t *testing.T) {
	code, err := NewInviteCode()
	require.NoError(t, err)
	require.Len(t, code, 20)
	// hex 字符集
	for _, r := range code {
		require.Contains(t, "0123456789abcdef", string(r))
	}
}

func TestNewInviteCodeUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := NewInviteCode()
		require.NoError(t, err)
		_, dup := seen[code]
		require.False(t, dup, "duplicate invite code %s", code)
		seen[code] = struct{}{}
	}
}
