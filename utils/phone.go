package utils

import (
	"errors"
	"strings"
)

// ErrInvalidPhone is returned when a phone number cannot be reduced to a
// North American 10-digit number.
var ErrInvalidPhone = errors.New("phone must have 10 digits, or 11 digits starting with 1")

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone reduces the input to digits and returns the canonical
// +1XXXXXXXXXX form. Accepted inputs are exactly 10 digits, or 11 digits
// beginning with "1"; everything else is rejected.
//
//	7785552345     -> +17785552345
//	778-555-2345   -> +17785552345
//	17785552345    -> +17785552345
//	+17785552345   -> +17785552345
func NormalizePhone(phone string) (string, error) {
	digits := stripNonDigits(phone)
	switch {
	case len(digits) == 10:
		return "+1" + digits, nil
	case len(digits) == 11 && digits[0] == '1':
		return "+" + digits, nil
	default:
		return "", ErrInvalidPhone
	}
}

// IsValidPhone reports whether the input would normalize cleanly.
func IsValidPhone(phone string) bool {
	_, err := NormalizePhone(phone)
	return err == nil
}
