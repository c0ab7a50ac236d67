package selectors

import (
	"sync"

	"github.com/five82/swatch/internal/state"
)

// DefaultMemoSize bounds a Memo's entries.
const DefaultMemoSize = 100

type memoKey[K comparable] struct {
	state *state.State
	arg   K
}

// Memo caches a selector's results keyed by state pointer and argument.
// Entries are evicted oldest first once the cache exceeds its size.
type Memo[K comparable, V any] struct {
	fn    func(*state.State, K) V
	limit int

	mu      sync.Mutex
	entries map[memoKey[K]]V
	order   []memoKey[K]
	hits    uint64
	misses  uint64
}

// NewMemo wraps fn. limit <= 0 uses DefaultMemoSize.
func NewMemo[K comparable, V any](fn func(*state.State, K) V, limit int) *Memo[K, V] {
	if limit <= 0 {
		limit = DefaultMemoSize
	}
	return &Memo[K, V]{
		fn:      fn,
		limit:   limit,
		entries: make(map[memoKey[K]]V),
	}
}

// Memoize wraps a selector that takes no argument.
func Memoize[V any](fn func(*state.State) V) *Memo[struct{}, V] {
	return NewMemo(func(s *state.State, _ struct{}) V { return fn(s) }, DefaultMemoSize)
}

// Get returns the cached result for (s, arg), computing it on a miss.
func (m *Memo[K, V]) Get(s *state.State, arg K) V {
	key := memoKey[K]{state: s, arg: arg}

	m.mu.Lock()
	if v, ok := m.entries[key]; ok {
		m.hits++
		m.mu.Unlock()
		return v
	}
	m.misses++
	m.mu.Unlock()

	v := m.fn(s, arg)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[key]; !ok {
		m.entries[key] = v
		m.order = append(m.order, key)
		for len(m.order) > m.limit {
			delete(m.entries, m.order[0])
			m.order = m.order[1:]
		}
	}
	return v
}

// Of is Get for argument-free selectors.
func (m *Memo[K, V]) Of(s *state.State) V {
	var zero K
	return m.Get(s, zero)
}

// Stats returns hit and miss counts.
func (m *Memo[K, V]) Stats() (hits, misses uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}

// Len returns the number of cached entries.
func (m *Memo[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Reset drops every entry and zeroes the counters.
func (m *Memo[K, V]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.entries)
	m.order = nil
	m.hits, m.misses = 0, 0
}

// Cache holds memoized versions of the costlier selectors.
type Cache struct {
	TotalQuantity    *Memo[struct{}, int]
	TotalStitchCount *Memo[struct{}, int]
	Summary          *Memo[struct{}, PricingSummary]
	Validation       *Memo[struct{}, ValidationStatus]
	RecentQuotes     *Memo[int, []state.Quote]
}

// NewCache builds an empty Cache.
func NewCache() *Cache {
	return &Cache{
		TotalQuantity:    Memoize(TotalQuantity),
		TotalStitchCount: Memoize(TotalStitchCount),
		Summary:          Memoize(Summary),
		Validation:       Memoize(Validation),
		RecentQuotes:     NewMemo(RecentQuotes, DefaultMemoSize),
	}
}
