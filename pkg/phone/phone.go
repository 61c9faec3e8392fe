// Package phone normalizes user-entered Senegalese phone numbers into
// the canonical international format expected by SMS providers.
package phone

import "strings"

const (
	countryCode       = "221"
	localMobilePrefix = "7"
	localNumberLength = 9
)

// Normalize converts arbitrary phone input into +221XXXXXXXXX form on a
// best-effort basis. It never fails: input that cannot be interpreted is
// returned cleaned but otherwise untouched, since SMS delivery is a
// best-effort concern and not worth blocking an order over.
func Normalize(raw string) string {
	cleaned := clean(raw)

	switch {
	case strings.HasPrefix(cleaned, "+"+countryCode):
		return cleaned
	case strings.HasPrefix(cleaned, countryCode):
		return "+" + cleaned
	case strings.HasPrefix(cleaned, localMobilePrefix) && len(cleaned) == localNumberLength:
		return "+" + countryCode + cleaned
	case len(cleaned) >= localNumberLength:
		// Last resort: take the trailing nine digits of whatever was
		// entered and assume a local number.
		digits := digitsOnly(cleaned)
		if len(digits) >= localNumberLength {
			return "+" + countryCode + digits[len(digits)-localNumberLength:]
		}
	}
	return cleaned
}

// clean strips whitespace, hyphens and parentheses.
func clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '-', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
