package ident

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		require.Len(t, id, 24)
		require.True(t, IsValid(id), "generated id must validate: %s", id)
		require.False(t, seen[id], "ids must not repeat")
		seen[id] = true
	}
}

func TestIsValid(t *testing.T) {
	require.True(t, IsValid("0123456789abcdef01234567"))
	require.False(t, IsValid(""))
	require.False(t, IsValid("0123456789abcdef0123456"))    // too short
	require.False(t, IsValid("0123456789abcdef012345678"))  // too long
	require.True(t, IsValid("0123456789ABCDEF01234567"))    // hex is case-insensitive
	require.False(t, IsValid("0123456789abcdef0123456g"))   // non-hex
	require.False(t, IsValid("department-name-not-an-id.")) // 24 chars, not hex
}
