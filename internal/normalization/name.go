package normalization

import (
	"strings"
	"unicode"
)

// NormalizeName maps a raw establishment name to the canonical search key.
// Ingestion stores this key and the query planner matches against it, so the
// two sides must agree bit-for-bit: lowercase, drop everything that is not a
// letter, digit or whitespace, collapse whitespace runs, trim.
func NormalizeName(input string) string {
	lowered := strings.ToLower(input)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
