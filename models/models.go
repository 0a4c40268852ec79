package models

import (
	"strconv"

	json "github.com/goccy/go-json"
)

// Song field names recognized by the scoring engine. Everything else travels
// through untouched in Extra.
const (
	FieldID               = "id"
	FieldTitle            = "title"
	FieldName             = "name"
	FieldArtist           = "artist"
	FieldPrimaryArtists   = "primaryArtists"
	FieldLanguage         = "language"
	FieldGlobalPopularity = "global_popularity_score"
	FieldPlayCount        = "play_count"
)

// Song is an open-schema catalog record. The recognized fields are parsed
// into typed members; unrecognized fields are kept verbatim in Extra and
// re-emitted on marshal so no caller data is lost.
type Song struct {
	ID             string
	Title          string
	Name           string
	Artist         string
	PrimaryArtists string
	Language       string

	// Popularity counters keep their raw decoded value so tolerant parsing
	// happens at scoring time, not at decode time.
	GlobalPopularity interface{}
	PlayCount        interface{}

	Extra map[string]interface{}
}

func (s *Song) UnmarshalJSON(data []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, value := range raw {
		switch key {
		case FieldID:
			s.ID = Stringify(value)
		case FieldTitle:
			s.Title = Stringify(value)
		case FieldName:
			s.Name = Stringify(value)
		case FieldArtist:
			s.Artist = Stringify(value)
		case FieldPrimaryArtists:
			s.PrimaryArtists = Stringify(value)
		case FieldLanguage:
			s.Language = Stringify(value)
		case FieldGlobalPopularity:
			s.GlobalPopularity = value
		case FieldPlayCount:
			s.PlayCount = value
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]interface{})
			}
			s.Extra[key] = value
		}
	}
	return nil
}

func (s Song) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.AsMap())
}

// AsMap flattens the song back into a single map, extension fields included.
func (s Song) AsMap() map[string]interface{} {
	m := make(map[string]interface{}, len(s.Extra)+8)
	for key, value := range s.Extra {
		m[key] = value
	}
	if s.ID != "" {
		m[FieldID] = s.ID
	}
	if s.Title != "" {
		m[FieldTitle] = s.Title
	}
	if s.Name != "" {
		m[FieldName] = s.Name
	}
	if s.Artist != "" {
		m[FieldArtist] = s.Artist
	}
	if s.PrimaryArtists != "" {
		m[FieldPrimaryArtists] = s.PrimaryArtists
	}
	if s.Language != "" {
		m[FieldLanguage] = s.Language
	}
	if s.GlobalPopularity != nil {
		m[FieldGlobalPopularity] = s.GlobalPopularity
	}
	if s.PlayCount != nil {
		m[FieldPlayCount] = s.PlayCount
	}
	return m
}

// TitleText returns the song title, falling back to the name field.
func (s Song) TitleText() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Name
}

// ArtistText returns the artist field, falling back to primaryArtists.
func (s Song) ArtistText() string {
	if s.Artist != "" {
		return s.Artist
	}
	return s.PrimaryArtists
}

// PopularityValue returns the raw popularity counter, preferring the global
// popularity score over the play count.
func (s Song) PopularityValue() interface{} {
	if s.GlobalPopularity != nil {
		return s.GlobalPopularity
	}
	return s.PlayCount
}

// Stringify coerces an arbitrary decoded JSON value into a string. Numbers
// are formatted without an exponent so identifiers survive the float round
// trip through the decoder.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// ScoreBreakdown carries the per-component scores attached to a ranked song.
// OriginalIndex records the song's position in the request catalog for
// auditing; it is never a sort key.
type ScoreBreakdown struct {
	FinalScore       float64 `json:"final_score"`
	TextScore        float64 `json:"text_score"`
	PreferenceScore  float64 `json:"preference_score"`
	PopularityScore  float64 `json:"popularity_score"`
	InteractionScore float64 `json:"interaction_score"`
	OriginalIndex    int     `json:"original_index"`
}

// RankedSong overlays a score breakdown on a song without touching the
// original fields.
type RankedSong struct {
	Song
	Rank ScoreBreakdown
}

func (r RankedSong) MarshalJSON() ([]byte, error) {
	m := r.Song.AsMap()
	m["_rank"] = r.Rank
	return json.Marshal(m)
}

// RecommendedSong overlays a single recommendation score on a song.
type RecommendedSong struct {
	Song
	Score float64
}

func (r RecommendedSong) MarshalJSON() ([]byte, error) {
	m := r.Song.AsMap()
	m["_recommendation_score"] = r.Score
	return json.Marshal(m)
}

// PreferenceBasis echoes the normalized, sorted preference sets a
// recommendation was computed from.
type PreferenceBasis struct {
	Language []string `json:"language"`
	Artists  []string `json:"artists"`
}

// RecommendationResult is the full response of a recommendation pass.
type RecommendationResult struct {
	RecommendedFor string            `json:"recommended_for"`
	BasedOn        PreferenceBasis   `json:"based_on"`
	Songs          []RecommendedSong `json:"songs"`
}

// UserPreferences carries caller-supplied preference signals. Both fields
// accept a scalar or a sequence; coercion happens in the ranking engine.
type UserPreferences struct {
	PreferredLanguage interface{} `json:"preferred_language"`
	PreferredArtists  interface{} `json:"preferred_artists"`
}

// RankRequest is the payload of POST /rank.
type RankRequest struct {
	UserID string `json:"userId" validate:"required"`
	Songs  []Song `json:"songs"`
	Query  string `json:"query"`
	TopK   int    `json:"topK" validate:"gte=0,lte=100"`
}

// RecommendRequest is the payload of POST /recommend.
type RecommendRequest struct {
	UserID   string          `json:"userId" validate:"required"`
	UserData UserPreferences `json:"userData"`
	Songs    []Song          `json:"songs"`
	TopK     int             `json:"topK" validate:"gte=0,lte=100"`
}

// RankResponse wraps the ranked songs of POST /rank.
type RankResponse struct {
	Results []RankedSong `json:"results"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
