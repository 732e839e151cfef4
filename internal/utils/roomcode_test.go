package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	code, err := GenerateRoomCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	for _, c := range code {
		assert.True(t, strings.ContainsRune(roomCodeAlphabet, c),
			"字符集外的字符: %c", c)
	}
}

func TestGenerateRoomCodeAvoidsAmbiguousChars(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateRoomCode(6)
		require.NoError(t, err)
		assert.NotContains(t, code, "0")
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
		assert.NotContains(t, code, "L")
	}
}

func TestGenerateRoomCodeDefaultLength(t *testing.T) {
	code, err := GenerateRoomCode(0)
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestGenerateRoomCodeUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateRoomCode(6)
		require.NoError(t, err)
		assert.False(t, seen[code], "房间码重复: %s", code)
		seen[code] = true
	}
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeRoomCode("  ab12cd "))
	assert.Equal(t, "XYZ789", NormalizeRoomCode("xyz789"))
	assert.Equal(t, "", NormalizeRoomCode("   "))
}
