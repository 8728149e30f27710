package common

import (
	"strings"
	"unicode"
)

// CutFirstField splits s at the first run of whitespace. The rest is
// returned trimmed; it is empty when s has a single field.
func CutFirstField(s string) (head, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// CutPrefixNonEmpty trims prefix from s and reports whether anything other
// than whitespace is left.
func CutPrefixNonEmpty(s, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(s, prefix)
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}
