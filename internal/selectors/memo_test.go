package selectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/swatch/internal/state"
)

func TestMemoHitsForSameState(t *testing.T) {
	calls := 0
	m := Memoize(func(s *state.State) int {
		calls++
		return TotalQuantity(s)
	})

	s1 := state.Initial()
	assert.Equal(t, 1, m.Of(s1))
	assert.Equal(t, 1, m.Of(s1))
	assert.Equal(t, 1, calls)

	hits, misses := m.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)

	s2 := apply(s1, state.UpdateQuantity{Quantity: 10})
	assert.Equal(t, 10, m.Of(s2))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, m.Of(s1))
	assert.Equal(t, 2, calls)
}

func TestMemoEvictsOldest(t *testing.T) {
	m := NewMemo(func(_ *state.State, n int) int { return n * 2 }, 3)
	s := state.Initial()
	for i := range 5 {
		m.Get(s, i)
	}
	require.Equal(t, 3, m.Len())

	m.Get(s, 4)
	hits, _ := m.Stats()
	assert.Equal(t, uint64(1), hits)

	m.Get(s, 0)
	hits, misses := m.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(6), misses)

	m.Reset()
	assert.Zero(t, m.Len())
	hits, misses = m.Stats()
	assert.Zero(t, hits+misses)
}

func TestCacheWithStore(t *testing.T) {
	st := state.NewStore()
	c := NewCache()

	first := c.Summary.Of(st.State())
	again := c.Summary.Of(st.State())
	assert.Equal(t, first, again)

	st.Dispatch(state.UpdateQuantity{Quantity: 6})
	assert.Equal(t, 6, c.Summary.Of(st.State()).Quantity)

	hits, misses := c.Summary.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(2), misses)

	assert.Empty(t, c.RecentQuotes.Get(st.State(), 3))
	assert.Equal(t, 6, c.TotalQuantity.Of(st.State()))
	assert.Zero(t, c.TotalStitchCount.Of(st.State()))
	assert.True(t, c.Validation.Of(st.State()).Warnings != nil)
}
