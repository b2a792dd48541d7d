package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTPCode(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := GenerateOTPCode(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit %q", code, r)
		}
	}
}

func TestGenerateOTPCodeDefaultsLength(t *testing.T) {
	code, err := GenerateOTPCode(0)
	require.NoError(t, err)
	assert.Len(t, code, DefaultOTPLength)
}

func TestGenerateRandomTokenUnique(t *testing.T) {
	first, err := GenerateRandomToken(32)
	require.NoError(t, err)
	second, err := GenerateRandomToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("123456"), HashToken("123456"))
	assert.NotEqual(t, HashToken("123456"), HashToken("123457"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@example.com", NormalizeEmail("  A@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "Alice", NormalizeUsername("  Alice "))
}
