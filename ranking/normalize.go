package ranking

import (
	"strings"

	"github.com/halvets/tunerank/models"
)

// Normalize canonicalizes an arbitrary decoded value into a comparable
// string: stringified, trimmed, lowercased. Nil and empty values come back
// as the empty string; no input type is rejected.
func Normalize(value interface{}) string {
	return strings.ToLower(strings.TrimSpace(models.Stringify(value)))
}

// CoerceList turns a scalar-or-sequence value into a uniform string slice.
func CoerceList(value interface{}) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, models.Stringify(item))
		}
		return out
	default:
		return []string{models.Stringify(v)}
	}
}

// Tokenize splits normalized text on whitespace and commas.
func Tokenize(text string) []string {
	normalized := strings.ReplaceAll(Normalize(text), ",", " ")
	return strings.Fields(normalized)
}

// normalizedSet builds a lookup set of normalized values, dropping empties.
func normalizedSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, value := range values {
		if normalized := Normalize(value); normalized != "" {
			set[normalized] = true
		}
	}
	return set
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
