package ranking

import (
	"strings"

	"github.com/halvets/tunerank/models"
)

const (
	preferenceBase     = 0.35
	languageMatchBonus = 0.3
	artistMatchBonus   = 0.35
)

// PreferenceScore rates the affinity between a song and a user's preferred
// language and artist sets. The artist bonus is granted at most once, on the
// first matching token of a comma-separated artist field.
func PreferenceScore(song models.Song, preferredLanguages, preferredArtists map[string]bool) float64 {
	score := preferenceBase

	language := Normalize(song.Language)
	if language != "" && preferredLanguages[language] {
		score += languageMatchBonus
	}

	artist := Normalize(song.ArtistText())
	if artist != "" {
		for _, token := range strings.Split(artist, ",") {
			token = strings.TrimSpace(token)
			if token == "" {
				continue
			}
			if preferredArtists[token] {
				score += artistMatchBonus
				break
			}
		}
	}

	return clamp(score, 0, 1)
}
