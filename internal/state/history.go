package state

import (
	"sync"
	"time"
)

// DefaultMaxHistory bounds the undo buffer when no size is configured.
const DefaultMaxHistory = 50

// Snapshot is a history entry: the state as it was before Action applied.
type Snapshot struct {
	Action    Action
	State     *State
	Timestamp time.Time
}

// History is a bounded ring of pre-action snapshots with an undo cursor.
//
// Entries [0, cursor) can be undone; entries [cursor, len) are the single
// redo branch. The live state when the cursor sits at the tail is kept in
// head so redo can return to it.
type History struct {
	mu     sync.Mutex
	ring   []Snapshot
	start  int
	count  int
	cursor int
	head   *State
}

// NewHistory builds a history holding at most max snapshots.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &History{ring: make([]Snapshot, max)}
}

// Record appends a snapshot, discarding any redo branch first. When the ring
// is full the oldest snapshot is dropped.
func (h *History) Record(snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for i := h.cursor; i < h.count; i++ {
		h.ring[h.index(i)] = Snapshot{}
	}
	h.count = h.cursor
	h.head = nil

	size := len(h.ring)
	if h.count < size {
		h.ring[h.index(h.count)] = snap
		h.count++
	} else {
		h.ring[h.start] = snap
		h.start = (h.start + 1) % size
	}
	h.cursor = h.count
}

// Max returns the capacity.
func (h *History) Max() int {
	return len(h.ring)
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Cursor returns the undo cursor position in [0, Len()].
func (h *History) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// CanUndo reports whether an older snapshot is reachable.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

// CanRedo reports whether an undone state can be restored.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < h.count
}

// Snapshots returns the retained snapshots, oldest first.
func (h *History) Snapshots() []Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Snapshot, h.count)
	for i := range out {
		out[i] = h.ring[h.index(i)]
	}
	return out
}

// undo moves the cursor back one step. live is the current store state and is
// remembered when leaving the tail.
func (h *History) undo(live *State) (*State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor == 0 {
		return nil, false
	}
	if h.cursor == h.count {
		h.head = live
	}
	h.cursor--
	return h.ring[h.index(h.cursor)].State, true
}

func (h *History) redo() (*State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor >= h.count {
		return nil, false
	}
	h.cursor++
	if h.cursor == h.count {
		return h.head, h.head != nil
	}
	return h.ring[h.index(h.cursor)].State, true
}

func (h *History) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	clear(h.ring)
	h.start, h.count, h.cursor = 0, 0, 0
	h.head = nil
}

func (h *History) index(i int) int {
	return (h.start + i) % len(h.ring)
}
