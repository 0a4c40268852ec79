package preferences

// Lookup keys understood by the ranking engine.
const (
	KeyPreferredLanguage = "preferred_language"
	KeyPreferredArtists  = "preferred_artists"
)

// Store is the injected preference lookup capability. The offline training
// pipeline will eventually back this with served user/item indices; the
// scoring formulas are unaffected by which implementation is plugged in.
type Store interface {
	Lookup(userID, key string) []string
}

// Empty is the default store: no preference signals for anyone.
type Empty struct{}

func (Empty) Lookup(string, string) []string {
	return nil
}

// Static serves a fixed preference table. Handy for tests and for wiring
// precomputed preference dumps without a live feature store.
type Static struct {
	users map[string]map[string][]string
}

func NewStatic(users map[string]map[string][]string) *Static {
	copied := make(map[string]map[string][]string, len(users))
	for userID, prefs := range users {
		userCopy := make(map[string][]string, len(prefs))
		for key, values := range prefs {
			valuesCopy := make([]string, len(values))
			copy(valuesCopy, values)
			userCopy[key] = valuesCopy
		}
		copied[userID] = userCopy
	}
	return &Static{users: copied}
}

func (s *Static) Lookup(userID, key string) []string {
	prefs, ok := s.users[userID]
	if !ok {
		return nil
	}
	return prefs[key]
}
