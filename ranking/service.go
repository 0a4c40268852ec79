package ranking

import (
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/halvets/tunerank/models"
	"github.com/halvets/tunerank/preferences"
)

// Blend weights for query-driven ranking. Lexical relevance dominates so
// search results stay on topic even for popular, well-liked songs.
const (
	textWeight        = 0.55
	preferenceWeight  = 0.20
	popularityWeight  = 0.15
	interactionWeight = 0.10
)

// Quality floor: a weak lexical match against a non-empty query halves the
// final score regardless of the other factors.
const (
	qualityFloorThreshold = 0.20
	qualityFloorPenalty   = 0.5
)

// Blend weights for query-less recommendation.
const (
	recommendPreferenceWeight = 0.7
	recommendPopularityWeight = 0.3
)

// parallelThreshold is the catalog size at which per-song scoring fans out
// across workers. Scoring has no cross-song dependency, so workers only
// need index-addressed writes into the shared result slice.
const parallelThreshold = 512

// Service is the stateless scoring engine. A single instance is safe to
// share across concurrent requests: it holds no mutable state and every
// operation is a pure function of its inputs.
type Service struct {
	store  preferences.Store
	logger *logrus.Logger
}

func New(store preferences.Store, logger *logrus.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
	}
}

// Rank scores every song against the query and the user's stored preference
// signals, sorts descending by final score (stable, so equal scores keep
// their input order) and returns the top max(1, topK) entries.
func (s *Service) Rank(userID string, songs []models.Song, query string, topK int) []models.RankedSong {
	normalizedQuery := Normalize(query)
	preferredLanguages := normalizedSet(s.store.Lookup(userID, preferences.KeyPreferredLanguage))
	preferredArtists := normalizedSet(s.store.Lookup(userID, preferences.KeyPreferredArtists))

	ranked := make([]models.RankedSong, len(songs))
	score := func(index int) {
		ranked[index] = s.scoreSong(userID, songs[index], index, normalizedQuery, preferredLanguages, preferredArtists)
	}
	forEachSong(len(songs), score)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rank.FinalScore > ranked[j].Rank.FinalScore
	})

	limit := clampTopK(topK, len(ranked))

	s.logger.WithFields(logrus.Fields{
		"userID":   userID,
		"catalog":  len(songs),
		"topK":     topK,
		"returned": limit,
	}).Debug("Ranked songs for user")

	return ranked[:limit]
}

// Recommend produces a query-less ordering driven by the caller-supplied
// preference signals blended with popularity.
func (s *Service) Recommend(userID string, prefs models.UserPreferences, songs []models.Song, topK int) models.RecommendationResult {
	preferredLanguages := normalizedSet(CoerceList(prefs.PreferredLanguage))
	preferredArtists := normalizedSet(CoerceList(prefs.PreferredArtists))

	scored := make([]models.RecommendedSong, len(songs))
	score := func(index int) {
		song := songs[index]
		preference := PreferenceScore(song, preferredLanguages, preferredArtists)
		popularity := NormalizePopularity(song.PopularityValue())
		scored[index] = models.RecommendedSong{
			Song:  song,
			Score: round6(recommendPreferenceWeight*preference + recommendPopularityWeight*popularity),
		}
	}
	forEachSong(len(songs), score)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	limit := clampTopK(topK, len(scored))

	s.logger.WithFields(logrus.Fields{
		"userID":   userID,
		"catalog":  len(songs),
		"topK":     topK,
		"returned": limit,
	}).Debug("Recommended songs for user")

	return models.RecommendationResult{
		RecommendedFor: userID,
		BasedOn: models.PreferenceBasis{
			Language: sortedValues(preferredLanguages),
			Artists:  sortedValues(preferredArtists),
		},
		Songs: scored[:limit],
	}
}

func (s *Service) scoreSong(userID string, song models.Song, index int, query string, preferredLanguages, preferredArtists map[string]bool) models.RankedSong {
	textScore := LexicalScore(query, song)
	popularityScore := NormalizePopularity(song.PopularityValue())
	preferenceScore := PreferenceScore(song, preferredLanguages, preferredArtists)
	interactionScore := InteractionBias(userID, Normalize(song.ID))

	finalScore := textWeight*textScore +
		preferenceWeight*preferenceScore +
		popularityWeight*popularityScore +
		interactionWeight*interactionScore

	if query != "" && textScore < qualityFloorThreshold {
		finalScore *= qualityFloorPenalty
	}

	return models.RankedSong{
		Song: song,
		Rank: models.ScoreBreakdown{
			FinalScore:       round6(finalScore),
			TextScore:        round6(textScore),
			PreferenceScore:  round6(preferenceScore),
			PopularityScore:  round6(popularityScore),
			InteractionScore: round6(interactionScore),
			OriginalIndex:    index,
		},
	}
}

// forEachSong runs score for every index, fanning out across workers once
// the catalog is large enough to pay for the goroutine overhead. Output is
// deterministic either way since each index is written exactly once.
func forEachSong(count int, score func(index int)) {
	if count < parallelThreshold {
		for i := 0; i < count; i++ {
			score(i)
		}
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > count {
		workers = count
	}

	indexes := make(chan int, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				score(i)
			}
		}()
	}
	for i := 0; i < count; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

// clampTopK bounds the requested result size to [1, available]. A caller
// asking for zero or negative still gets one result when any exist.
func clampTopK(topK, available int) int {
	if topK < 1 {
		topK = 1
	}
	if topK > available {
		topK = available
	}
	return topK
}

func sortedValues(set map[string]bool) []string {
	values := make([]string, 0, len(set))
	for value := range set {
		values = append(values, value)
	}
	sort.Strings(values)
	return values
}

func round6(value float64) float64 {
	return math.Round(value*1e6) / 1e6
}
