package middleware

import (
	"github.com/five82/swatch/internal/state"
)

// untracked actions never enter the undo history.
var untracked = map[state.ActionType]bool{
	state.TypeSetLoading:    true,
	state.TypeAddError:      true,
	state.TypeClearErrors:   true,
	state.TypeAddWarning:    true,
	state.TypeClearWarnings: true,
	state.TypeUndo:          true,
	state.TypeRedo:          true,
}

// History records the pre-action state of every tracked action. The first
// call installs a history buffer of size max on the store, which enables
// Undo and Redo. It must be the last stage so vetoed actions are never
// recorded.
func History(max int) state.Middleware {
	return func(a state.Action, prev *state.State, store *state.Store) bool {
		h := store.EnsureHistory(max)
		if untracked[a.Type()] {
			return true
		}
		h.Record(state.Snapshot{Action: a, State: prev, Timestamp: a.Timestamp})
		return true
	}
}
