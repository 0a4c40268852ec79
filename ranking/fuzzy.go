package ranking

import "unicode/utf8"

const (
	// fuzzyMatchScore is the contribution of an approximate term match.
	fuzzyMatchScore = 0.55

	// longTermLength is the term length at which two edits are tolerated
	// instead of one.
	longTermLength = 7
)

// FuzzyTermMatch checks whether a query term approximately matches any token
// in the haystack. Tokens are scanned in order and the FIRST token within the
// edit-distance threshold wins; the scan does not continue looking for a
// closer token. Changing this to best-match would alter ranking output.
func FuzzyTermMatch(term string, tokens []string) float64 {
	termLen := utf8.RuneCountInString(term)

	threshold := 1
	if termLen >= longTermLength {
		threshold = 2
	}

	for _, token := range tokens {
		if token == "" {
			continue
		}

		lengthDiff := termLen - utf8.RuneCountInString(token)
		if lengthDiff < 0 {
			lengthDiff = -lengthDiff
		}
		if lengthDiff > threshold {
			continue
		}

		if Levenshtein(term, token) <= threshold {
			return fuzzyMatchScore
		}
	}

	return 0
}
