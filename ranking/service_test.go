package ranking

import (
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/halvets/tunerank/models"
	"github.com/halvets/tunerank/preferences"
)

func newTestService() *Service {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return New(preferences.Empty{}, logger)
}

func TestNew(t *testing.T) {
	logger := logrus.New()
	store := preferences.Empty{}

	service := New(store, logger)

	if service == nil {
		t.Fatal("Service should not be nil")
	}
	if service.logger != logger {
		t.Error("Logger should be set correctly")
	}
}

func TestRankScoreRanges(t *testing.T) {
	service := newTestService()
	songs := []models.Song{
		{ID: "1", Title: "Blue Moon", Artist: "Billie Holiday", Language: "english", GlobalPopularity: float64(500)},
		{ID: "2", Title: "Tum Hi Ho", Artist: "Arijit Singh", Language: "hindi", PlayCount: float64(123456)},
		{ID: "3"},
		{},
	}

	ranked := service.Rank("alice", songs, "blue", len(songs))

	for _, rs := range ranked {
		b := rs.Rank
		for name, score := range map[string]float64{
			"final_score":       b.FinalScore,
			"text_score":        b.TextScore,
			"preference_score":  b.PreferenceScore,
			"popularity_score":  b.PopularityScore,
			"interaction_score": b.InteractionScore,
		} {
			if score < 0 || score > 1 {
				t.Errorf("%s = %v for song %q, outside [0,1]", name, score, rs.ID)
			}
		}
	}
}

func TestRankTopKClamping(t *testing.T) {
	service := newTestService()
	songs := []models.Song{
		{ID: "1", Title: "One"},
		{ID: "2", Title: "Two"},
		{ID: "3", Title: "Three"},
	}

	tests := []struct {
		name     string
		topK     int
		expected int
	}{
		{name: "Zero clamps to one", topK: 0, expected: 1},
		{name: "Negative clamps to one", topK: -5, expected: 1},
		{name: "Within range", topK: 2, expected: 2},
		{name: "Above catalog size", topK: 100, expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := service.Rank("alice", songs, "", tt.topK)
			if len(ranked) != tt.expected {
				t.Errorf("Rank with topK=%d returned %d songs, want %d", tt.topK, len(ranked), tt.expected)
			}
		})
	}
}

func TestRankEmptyCatalog(t *testing.T) {
	service := newTestService()

	ranked := service.Rank("alice", nil, "blue", 10)
	if len(ranked) != 0 {
		t.Errorf("Empty catalog should rank to empty result, got %d songs", len(ranked))
	}
}

func TestRankEmptyQueryNeutralText(t *testing.T) {
	service := newTestService()
	songs := []models.Song{
		{ID: "1", Title: "Anything"},
		{ID: "2"},
	}

	ranked := service.Rank("alice", songs, "", len(songs))

	for _, rs := range ranked {
		if rs.Rank.TextScore != 0.5 {
			t.Errorf("Empty query should give text score 0.5, song %q got %v", rs.ID, rs.Rank.TextScore)
		}
	}
}

func TestRankExactTitleMatch(t *testing.T) {
	service := newTestService()
	songs := []models.Song{{ID: "1", Title: "Blue Moon"}}

	ranked := service.Rank("alice", songs, "blue moon", 1)

	if ranked[0].Rank.TextScore != 1.0 {
		t.Errorf("Exact title match should give text score 1.0, got %v", ranked[0].Rank.TextScore)
	}
}

func TestRankSortedDescending(t *testing.T) {
	service := newTestService()
	songs := []models.Song{
		{ID: "1", Title: "Unrelated", GlobalPopularity: float64(5)},
		{ID: "2", Title: "Blue Moon", GlobalPopularity: float64(500)},
		{ID: "3", Title: "Blue", GlobalPopularity: float64(5)},
	}

	ranked := service.Rank("alice", songs, "blue", len(songs))

	for i := 1; i < len(ranked); i++ {
		if ranked[i-1].Rank.FinalScore < ranked[i].Rank.FinalScore {
			t.Errorf("Results not sorted descending at position %d: %v < %v",
				i, ranked[i-1].Rank.FinalScore, ranked[i].Rank.FinalScore)
		}
	}
}

func TestRankStableOnTies(t *testing.T) {
	service := newTestService()

	// Identical songs without ids produce identical scores across the
	// board, so input order must survive the sort.
	songs := make([]models.Song, 6)
	for i := range songs {
		songs[i] = models.Song{Title: "Same Song", Extra: map[string]interface{}{"seq": i}}
	}

	ranked := service.Rank("alice", songs, "", len(songs))

	for i, rs := range ranked {
		if rs.Rank.OriginalIndex != i {
			t.Errorf("Tie at position %d broke input order: original index %d", i, rs.Rank.OriginalIndex)
		}
	}
}

func TestRankQualityFloorPenalty(t *testing.T) {
	service := newTestService()
	song := models.Song{ID: "x", Title: "Totally Unrelated", GlobalPopularity: float64(999999)}

	with := service.Rank("alice", []models.Song{song}, "zzzzzz", 1)[0]
	without := service.Rank("alice", []models.Song{song}, "", 1)[0]

	if with.Rank.TextScore >= 0.20 {
		t.Fatalf("Test setup broken: expected weak text score, got %v", with.Rank.TextScore)
	}

	// With the penalty the final score must be half of the unpenalized
	// blend for the same non-text components.
	unpenalized := 0.55*with.Rank.TextScore +
		0.20*with.Rank.PreferenceScore +
		0.15*with.Rank.PopularityScore +
		0.10*with.Rank.InteractionScore
	expected := round6(unpenalized * 0.5)

	if with.Rank.FinalScore != expected {
		t.Errorf("Penalized final score = %v, want %v", with.Rank.FinalScore, expected)
	}

	if without.Rank.FinalScore <= with.Rank.FinalScore {
		t.Errorf("Empty query must not be penalized: %v <= %v", without.Rank.FinalScore, with.Rank.FinalScore)
	}
}

func TestRankPopularityBreaksNearTies(t *testing.T) {
	service := newTestService()
	songs := []models.Song{
		{Title: "blue", GlobalPopularity: float64(5)},
		{Title: "blue moon", GlobalPopularity: float64(500)},
	}

	ranked := service.Rank("alice", songs, "blue", 2)

	for _, rs := range ranked {
		if rs.Rank.TextScore < 0.82 {
			t.Errorf("Song %q text score %v, want >= 0.82", rs.Title, rs.Rank.TextScore)
		}
	}

	// The 0.05 text gap (1.0 vs 0.95) weighs 0.0275 in the blend; the
	// popularity gap weighs more, so the popular near-tie ranks first.
	if ranked[0].Title != "blue moon" {
		t.Errorf("Expected popularity to break the near-tie, got %q first", ranked[0].Title)
	}
}

func TestRankPreferenceStoreInjection(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	store := preferences.NewStatic(map[string]map[string][]string{
		"alice": {
			preferences.KeyPreferredLanguage: {"hindi"},
			preferences.KeyPreferredArtists:  {"Arijit Singh"},
		},
	})
	service := New(store, logger)

	songs := []models.Song{
		{ID: "1", Title: "Song A", Language: "hindi", Artist: "Arijit Singh"},
		{ID: "2", Title: "Song B", Language: "english", Artist: "Someone"},
	}

	ranked := service.Rank("alice", songs, "", 2)

	var matched, unmatched models.RankedSong
	for _, rs := range ranked {
		if rs.ID == "1" {
			matched = rs
		} else {
			unmatched = rs
		}
	}

	if matched.Rank.PreferenceScore != 1.0 {
		t.Errorf("Stored preferences should yield preference score 1.0, got %v", matched.Rank.PreferenceScore)
	}
	if unmatched.Rank.PreferenceScore != 0.35 {
		t.Errorf("Unmatched song should keep base preference score, got %v", unmatched.Rank.PreferenceScore)
	}
}

func TestRankDeterministic(t *testing.T) {
	service := newTestService()
	songs := []models.Song{
		{ID: "1", Title: "Blue Moon", Artist: "Billie Holiday", GlobalPopularity: float64(500)},
		{ID: "2", Title: "Blue", GlobalPopularity: float64(5)},
		{ID: "3", Title: "Moon River", PlayCount: float64(42)},
	}

	first := service.Rank("alice", songs, "blue", 3)
	second := service.Rank("alice", songs, "blue", 3)

	for i := range first {
		if first[i].ID != second[i].ID || first[i].Rank != second[i].Rank {
			t.Errorf("Rank not deterministic at position %d: %+v vs %+v", i, first[i].Rank, second[i].Rank)
		}
	}
}

func TestRankParallelDeterministic(t *testing.T) {
	service := newTestService()

	// Well above the fan-out threshold so the worker path runs.
	count := parallelThreshold * 2
	songs := make([]models.Song, count)
	for i := range songs {
		songs[i] = models.Song{
			ID:               fmt.Sprintf("song-%d", i),
			Title:            fmt.Sprintf("Title %d", i%97),
			GlobalPopularity: float64(i % 1000),
		}
	}

	first := service.Rank("alice", songs, "title 7", count)
	second := service.Rank("alice", songs, "title 7", count)

	if len(first) != count || len(second) != count {
		t.Fatalf("Expected full catalog back, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("Parallel scoring not deterministic at position %d: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestRecommend(t *testing.T) {
	service := newTestService()
	prefs := models.UserPreferences{
		PreferredLanguage: []interface{}{"Hindi"},
		PreferredArtists:  []interface{}{"Arijit Singh", "Shreya Ghoshal"},
	}
	songs := []models.Song{
		{ID: "1", Title: "Match", Language: "hindi", Artist: "Arijit Singh", GlobalPopularity: float64(100)},
		{ID: "2", Title: "Miss", Language: "english", Artist: "Nobody", GlobalPopularity: float64(100)},
	}

	result := service.Recommend("alice", prefs, songs, 2)

	if result.RecommendedFor != "alice" {
		t.Errorf("RecommendedFor = %q, want %q", result.RecommendedFor, "alice")
	}
	if len(result.BasedOn.Language) != 1 || result.BasedOn.Language[0] != "hindi" {
		t.Errorf("BasedOn.Language = %v, want [hindi]", result.BasedOn.Language)
	}
	if len(result.BasedOn.Artists) != 2 || result.BasedOn.Artists[0] != "arijit singh" || result.BasedOn.Artists[1] != "shreya ghoshal" {
		t.Errorf("BasedOn.Artists = %v, want sorted normalized artists", result.BasedOn.Artists)
	}
	if len(result.Songs) != 2 {
		t.Fatalf("Expected 2 recommendations, got %d", len(result.Songs))
	}
	if result.Songs[0].ID != "1" {
		t.Errorf("Preference-matching song should rank first, got %q", result.Songs[0].ID)
	}
	for _, rs := range result.Songs {
		if rs.Score < 0 || rs.Score > 1 {
			t.Errorf("Recommendation score %v outside [0,1]", rs.Score)
		}
	}
}

func TestRecommendScalarPreferences(t *testing.T) {
	service := newTestService()
	prefs := models.UserPreferences{
		PreferredLanguage: "Hindi",
		PreferredArtists:  "Arijit Singh",
	}
	songs := []models.Song{
		{ID: "1", Language: "hindi", Artist: "Arijit Singh"},
	}

	result := service.Recommend("alice", prefs, songs, 1)

	// 0.7 * 1.0 preference + 0.3 * 0.3 popularity default
	expected := round6(0.7*1.0 + 0.3*0.3)
	if result.Songs[0].Score != expected {
		t.Errorf("Recommendation score = %v, want %v", result.Songs[0].Score, expected)
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	service := newTestService()
	prefs := models.UserPreferences{
		PreferredLanguage: []interface{}{"telugu", "hindi"},
	}

	result := service.Recommend("bob", prefs, nil, 5)

	if len(result.Songs) != 0 {
		t.Errorf("Empty catalog should yield no recommendations, got %d", len(result.Songs))
	}
	if len(result.BasedOn.Language) != 2 || result.BasedOn.Language[0] != "hindi" || result.BasedOn.Language[1] != "telugu" {
		t.Errorf("BasedOn.Language = %v, want sorted [hindi telugu]", result.BasedOn.Language)
	}
	if result.BasedOn.Artists == nil {
		t.Error("BasedOn.Artists should be an empty slice, not nil")
	}
}

func TestRecommendTopKClamping(t *testing.T) {
	service := newTestService()
	songs := []models.Song{
		{ID: "1"},
		{ID: "2"},
	}

	result := service.Recommend("alice", models.UserPreferences{}, songs, -1)
	if len(result.Songs) != 1 {
		t.Errorf("Negative topK should clamp to 1, got %d songs", len(result.Songs))
	}
}

func TestRecommendStableOnTies(t *testing.T) {
	service := newTestService()
	songs := make([]models.Song, 5)
	for i := range songs {
		songs[i] = models.Song{ID: fmt.Sprintf("song-%d", i)}
	}

	result := service.Recommend("alice", models.UserPreferences{}, songs, len(songs))

	for i, rs := range result.Songs {
		expected := fmt.Sprintf("song-%d", i)
		if rs.ID != expected {
			t.Errorf("Tie at position %d broke input order: got %q, want %q", i, rs.ID, expected)
		}
	}
}
