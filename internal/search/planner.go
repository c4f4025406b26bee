package search

import (
	"strings"

	"github.com/platewatch/platewatch-backend/internal/normalization"
)

// Plan is a store-native search predicate derived from a user term. Key is
// the normalized term (also the cache key suffix); TSQuery is the prefix-AND
// tsquery string, e.g. "twos:* & din:*".
type Plan struct {
	Key     string
	TSQuery string
}

// Empty reports whether the plan matches nothing and the store must not be
// touched at all.
func (p Plan) Empty() bool { return p.TSQuery == "" }

// BuildPlan normalizes the user term and turns every whitespace-separated
// token into a prefix match, combined with logical AND. A candidate must
// start-match every token, in any order.
func BuildPlan(term string) Plan {
	key := normalization.NormalizeName(term)
	if key == "" {
		return Plan{}
	}

	tokens := strings.Fields(key)
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, tok+":*")
	}
	return Plan{
		Key:     key,
		TSQuery: strings.Join(parts, " & "),
	}
}
