package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhoneCanonicalForms(t *testing.T) {
	inputs := []string{
		"7785552345",
		"778-555-2345",
		"17785552345",
		"+17785552345",
		"(778) 555-2345",
		"1 (778) 555-2345",
	}

	for _, input := range inputs {
		got, err := NormalizePhone(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "+17785552345", got, "input %q", input)
	}
}

func TestNormalizePhoneRejectsBadInput(t *testing.T) {
	inputs := []string{
		"",
		"555-2345",     // 7 digits
		"77855523456",  // 11 digits not starting with 1
		"177855523456", // 12 digits
		"778555234",    // 9 digits
		"not a phone",
		"+44 20 7946 0958", // non-NANP
	}

	for _, input := range inputs {
		_, err := NormalizePhone(input)
		assert.ErrorIs(t, err, ErrInvalidPhone, "input %q", input)
		assert.False(t, IsValidPhone(input), "input %q", input)
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("7785552345"))
	assert.True(t, IsValidPhone("1-778-555-2345"))
	assert.False(t, IsValidPhone("12345"))
}
