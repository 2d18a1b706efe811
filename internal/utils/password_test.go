package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("hunter22")
	require.NoError(t, err)

	parts := strings.SplitN(hashed, ".", 2)
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])

	// A fresh salt means a fresh hash.
	again, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, again)
}

func TestComparePassword(t *testing.T) {
	hashed, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, ComparePassword("hunter22", hashed))
	assert.False(t, ComparePassword("wrong", hashed))
	assert.False(t, ComparePassword("hunter22", "malformed"))
}

func TestRandomHexAddress(t *testing.T) {
	addr := RandomHexAddress()
	assert.True(t, strings.HasPrefix(addr, "0x"))
	assert.Len(t, addr, 42)
	assert.NotEqual(t, addr, RandomHexAddress())
}
