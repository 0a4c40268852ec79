package ranking

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// unrankedPopularityScore keeps new and unranked songs at a moderate default
// instead of suppressing them to zero.
const unrankedPopularityScore = 0.3

// popularityScale divides log10(value+1); raw counters at or above 10^6-1
// saturate to 1.0.
const popularityScale = 2.5

// NormalizePopularity compresses a raw popularity counter into [0,1] on a
// log10 curve. Unparseable values are treated as zero.
func NormalizePopularity(value interface{}) float64 {
	raw := parseFloat(value)
	if raw <= 0 {
		return unrankedPopularityScore
	}
	return clamp(math.Log10(raw+1)/popularityScale, 0, 1)
}

func parseFloat(value interface{}) float64 {
	switch v := value.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
