package phone

import "strings"

// Normalize canonicalizes a raw phone number into a single dialable E.164-ish
// form. Malformed input yields the empty string; callers treat that as
// "cannot place or send."
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	plus := strings.HasPrefix(trimmed, "+")

	var b strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	switch {
	case plus:
		return "+" + digits
	case strings.HasPrefix(digits, "00") && len(digits) > 2:
		return "+" + strings.TrimPrefix(digits, "00")
	case len(digits) == 11 && strings.HasPrefix(digits, "1"):
		return "+" + digits
	case len(digits) == 10:
		return "+1" + digits
	default:
		return "+" + digits
	}
}
