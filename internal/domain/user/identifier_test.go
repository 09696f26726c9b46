package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"short number", "2945", "0000000000002945"},
		{"single digit", "7", "0000000000000007"},
		{"already canonical", "0000000000002945", "0000000000002945"},
		{"full width", "1234567890123456", "1234567890123456"},
		{"separators stripped", "123-45-6789", "0000000123456789"},
		{"spaces and letters stripped", " ab 12 cd 34 ", "0000000000001234"},
		{"leading zeros beyond width", "000000000000000000042", "0000000000000042"},
		{"empty passthrough", "", ""},
		{"no digits passthrough", "abc-def", "abc-def"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeIdentifier(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeIdentifier_PadsToWidth(t *testing.T) {
	for k := 1; k <= SSNLength; k++ {
		raw := strings.Repeat("9", k)
		got, err := NormalizeIdentifier(raw)
		require.NoError(t, err)
		assert.Len(t, got, SSNLength)
		assert.Equal(t, strings.Repeat("0", SSNLength-k)+raw, got)
	}
}

func TestNormalizeIdentifier_Idempotent(t *testing.T) {
	once, err := NormalizeIdentifier("12-34")
	require.NoError(t, err)
	twice, err := NormalizeIdentifier(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestNormalizeIdentifier_TooLong(t *testing.T) {
	_, err := NormalizeIdentifier("12345678901234567")
	assert.ErrorIs(t, err, ErrIdentifierTooLong)

	_, err = NormalizeIdentifier("99999999999999999999999999")
	assert.ErrorIs(t, err, ErrIdentifierTooLong)
}

func TestIsCanonicalSSN(t *testing.T) {
	assert.True(t, IsCanonicalSSN("0000000000002945"))
	assert.False(t, IsCanonicalSSN("2945"))
	assert.False(t, IsCanonicalSSN("abc"))
	assert.False(t, IsCanonicalSSN("000000000000294a"))
}
