package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/swatch/internal/middleware"
	"github.com/five82/swatch/internal/state"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (Model, *state.Store) {
	t.Helper()
	st := state.NewStore(state.WithClock(func() time.Time { return testNow }))
	st.Use(middleware.Stack(middleware.Options{FeatureFlags: true, History: true})...)
	st.Dispatch(state.SetProduct{
		Name:   ptr("Core Cotton Tee"),
		Colors: []string{"Black", "Navy", "Red"},
	})
	m := New(Options{Store: st, Now: func() time.Time { return testNow }})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model), st
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func ptr[T any](v T) *T { return &v }

func TestQuantityKeys(t *testing.T) {
	m, st := newTestModel(t)

	m = press(t, m, "+", "+", "]")
	if got := st.State().Selections.Quantity; got != 15 {
		t.Fatalf("quantity = %d, want 15", got)
	}
	m = press(t, m, "[", "[", "-")
	if got := st.State().Selections.Quantity; got != 1 {
		t.Fatalf("quantity = %d, want 1 (floor)", got)
	}
	if m.flash == "" || !m.flashErr {
		t.Fatalf("expected a rejection flash for quantity 0, got %q", m.flash)
	}
}

func TestEmbellishmentCycles(t *testing.T) {
	m, st := newTestModel(t)
	var seen []state.Embellishment
	for range len(state.Embellishments()) + 1 {
		m = press(t, m, "e")
		seen = append(seen, st.State().Selections.EmbellishmentType)
	}
	if seen[0] != state.EmbellishmentEmbroidery {
		t.Fatalf("first embellishment = %q, want embroidery", seen[0])
	}
	if seen[len(seen)-1] != seen[0] {
		t.Fatalf("cycle did not wrap: %v", seen)
	}
}

func TestColorKeyRespectsMultiColorFlag(t *testing.T) {
	m, st := newTestModel(t)

	m = press(t, m, "c", "c")
	if got := st.State().Selections.Color; got != "Navy" {
		t.Fatalf("color = %q, want Navy", got)
	}

	m = press(t, m, "m", "c")
	sel := st.State().Selections
	if len(sel.Colors) != 2 || sel.Color != "Navy" {
		t.Fatalf("colors = %v (primary %q), want two colors with Navy primary", sel.Colors, sel.Color)
	}
	_ = m
}

func TestUndoRedoKeys(t *testing.T) {
	m, st := newTestModel(t)
	m = press(t, m, "+", "+")
	m = press(t, m, "u")
	if got := st.State().Selections.Quantity; got != 2 {
		t.Fatalf("quantity after undo = %d, want 2", got)
	}
	m = press(t, m, "r")
	if got := st.State().Selections.Quantity; got != 3 {
		t.Fatalf("quantity after redo = %d, want 3", got)
	}
	m = press(t, m, "r")
	if m.flash != "Nothing to redo" {
		t.Fatalf("flash = %q, want Nothing to redo", m.flash)
	}
}

func TestPriceKeyRunsEffect(t *testing.T) {
	m, st := newTestModel(t)
	m = press(t, m, "e", "e", "e", "e") // dtg

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	m = next.(Model)
	if cmd == nil || m.busy != "Pricing" {
		t.Fatalf("expected a pricing command, busy = %q", m.busy)
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if m.busy != "" {
		t.Fatalf("busy = %q after effect", m.busy)
	}
	if st.State().Pricing.TotalPrice <= 0 {
		t.Fatalf("TotalPrice = %v, want > 0", st.State().Pricing.TotalPrice)
	}
	if got := priceStatus(m.current, testNow); got != "priced" {
		t.Fatalf("priceStatus = %q, want priced", got)
	}
	if !strings.Contains(m.View(), "Total") {
		t.Fatalf("view does not show pricing")
	}
}

func TestSaveAndLoadQuoteKeys(t *testing.T) {
	m, st := newTestModel(t)
	m = press(t, m, "]")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("s")})
	m = next.(Model)
	next, _ = m.Update(cmd())
	m = next.(Model)
	if len(st.State().Quotes.Saved) != 1 {
		t.Fatalf("saved quotes = %d, want 1", len(st.State().Quotes.Saved))
	}

	m = press(t, m, "x")
	if st.State().Selections.Quantity != 1 {
		t.Fatalf("reset did not clear quantity")
	}

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil {
		t.Fatalf("enter on a saved quote should start loading it")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if got := st.State().Selections.Quantity; got != 13 {
		t.Fatalf("quantity after load = %d, want 13", got)
	}
	if !strings.Contains(m.View(), "Core Cotton Tee") {
		t.Fatalf("view does not show the product")
	}
}

func TestHelpOverlayClosesOnAnyKey(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "?")
	if !m.showHelp || !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown")
	}
	m = press(t, m, "+")
	if m.showHelp {
		t.Fatalf("help overlay still shown")
	}
}

func TestPriceStatus(t *testing.T) {
	s := state.Initial()
	if got := priceStatus(s, testNow); got != "unpriced" {
		t.Fatalf("priceStatus = %q, want unpriced", got)
	}
	s = state.Reduce(s, state.Action{Payload: state.UpdatePricing{TotalPrice: ptr(10.0)}, Timestamp: testNow})
	if got := priceStatus(s, testNow.Add(10*time.Minute)); got != "stale" {
		t.Fatalf("priceStatus = %q, want stale", got)
	}
	s = state.Reduce(s, state.Action{Payload: state.AddError{Error: "x"}, Timestamp: testNow})
	if got := priceStatus(s, testNow); got != "error" {
		t.Fatalf("priceStatus = %q, want error", got)
	}
}

func TestThemeCycle(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() = %v, want 3 themes", names)
	}
	for i, name := range names {
		if got := NextTheme(name); got != names[(i+1)%len(names)] {
			t.Fatalf("NextTheme(%q) = %q", name, got)
		}
	}
	if got := GetTheme("Unknown").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Unknown).Name = %q, want Nightfox", got)
	}
	for _, name := range names {
		th := GetTheme(name)
		for _, status := range []string{"priced", "stale", "unpriced", "loading", "error", "saved"} {
			if th.StatusColors[status] == "" {
				t.Fatalf("theme %s has no color for %q", name, status)
			}
		}
		if th.StatusColors["error"] != th.Danger || th.StatusColors["priced"] != th.Success {
			t.Fatalf("theme %s status colors = %v, want derived from palette", name, th.StatusColors)
		}
	}
}
