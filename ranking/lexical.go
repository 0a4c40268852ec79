package ranking

import (
	"strings"

	"github.com/halvets/tunerank/models"
)

// Lexical match tiers, strongest first.
const (
	exactTitleScore     = 1.0
	titlePrefixScore    = 0.95
	titleSubstringScore = 0.9
	haystackScore       = 0.82
	neutralQueryScore   = 0.5
	emptyTermsScore     = 0.4

	termInTitleScore  = 1.0
	termInArtistScore = 0.8
)

// LexicalScore rates the relevance of a query against a song's title and
// artist text. An empty query is neutral so that queryless callers do not
// penalize any song.
func LexicalScore(query string, song models.Song) float64 {
	query = Normalize(query)
	if query == "" {
		return neutralQueryScore
	}

	title := Normalize(song.TitleText())
	artist := Normalize(song.ArtistText())
	haystack := strings.TrimSpace(title + " " + artist)

	if title == query {
		return exactTitleScore
	}
	if strings.HasPrefix(title, query) {
		return titlePrefixScore
	}
	if strings.Contains(title, query) {
		return titleSubstringScore
	}
	if strings.Contains(haystack, query) {
		return haystackScore
	}

	terms := strings.Fields(query)
	if len(terms) == 0 {
		return emptyTermsScore
	}

	tokens := Tokenize(haystack)

	hits := 0.0
	for _, term := range terms {
		switch {
		case strings.Contains(title, term):
			hits += termInTitleScore
		case strings.Contains(artist, term):
			hits += termInArtistScore
		default:
			hits += FuzzyTermMatch(term, tokens)
		}
	}

	return clamp(hits/float64(len(terms)), 0, 1)
}
