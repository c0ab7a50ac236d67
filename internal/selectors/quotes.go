package selectors

import (
	"bytes"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/five82/swatch/internal/state"
)

// DefaultRecentQuotes is the default limit for RecentQuotes.
const DefaultRecentQuotes = 5

// QuoteByID finds a saved quote.
func QuoteByID(s *state.State, id string) (state.Quote, bool) {
	i := slices.IndexFunc(s.Quotes.Saved, func(q state.Quote) bool { return q.ID == id })
	if i < 0 {
		return state.Quote{}, false
	}
	return s.Quotes.Saved[i], true
}

// QuoteCount returns the number of saved quotes.
func QuoteCount(s *state.State) int {
	return len(s.Quotes.Saved)
}

// RecentQuotes returns up to limit saved quotes, most recently updated
// first. limit <= 0 uses DefaultRecentQuotes.
func RecentQuotes(s *state.State, limit int) []state.Quote {
	if limit <= 0 {
		limit = DefaultRecentQuotes
	}
	out := slices.Clone(s.Quotes.Saved)
	slices.SortStableFunc(out, func(a, b state.Quote) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// HasUnsavedChanges reports whether selections or pricing differ from the
// current quote.
func HasUnsavedChanges(s *state.State) bool {
	cur := s.Quotes.Current
	if cur == nil {
		return false
	}
	live, err1 := json.Marshal(struct {
		Selections *state.Selections `json:"selections"`
		Pricing    *state.Pricing    `json:"pricing"`
	}{s.Selections, s.Pricing})
	saved, err2 := json.Marshal(struct {
		Selections state.Selections `json:"selections"`
		Pricing    state.Pricing    `json:"pricing"`
	}{cur.Selections, cur.Pricing})
	if err1 != nil || err2 != nil {
		return true
	}
	return !bytes.Equal(live, saved)
}
