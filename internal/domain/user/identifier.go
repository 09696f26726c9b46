package user

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const SSNLength = 16

var ErrIdentifierTooLong = errors.New("identifier has more than 16 significant digits")

// NormalizeIdentifier strips every non-digit character from raw and renders
// the remaining number zero-padded to SSNLength. Input without any digit is
// returned unchanged.
func NormalizeIdentifier(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return raw, nil
	}

	if len(strings.TrimLeft(digits, "0")) > SSNLength {
		return "", fmt.Errorf("%w: %s", ErrIdentifierTooLong, raw)
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse identifier %q: %w", raw, err)
	}
	return fmt.Sprintf("%0*d", SSNLength, n), nil
}

// IsCanonicalSSN reports whether s is exactly SSNLength ASCII digits.
func IsCanonicalSSN(s string) bool {
	if len(s) != SSNLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
