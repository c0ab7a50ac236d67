package app

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/five82/swatch/internal/actions"
	"github.com/five82/swatch/internal/calculator"
	"github.com/five82/swatch/internal/middleware"
	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/storage"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 30 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 30 * time.Second},
		{"negative failures", -1, 30 * time.Second},
		{"one failure", 1, time.Minute},
		{"two failures", 2, 2 * time.Minute},
		{"three failures", 3, 4 * time.Minute},
		{"four failures capped", 4, 5 * time.Minute}, // Would be 8m, capped to 5m
		{"many failures capped", 10, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 30 * time.Second
	for failures := 0; failures <= 40; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

// pricedStore returns a store holding a DTG quote priced at t0.
func pricedStore(t0 time.Time) *state.Store {
	clock := t0
	st := state.NewStore(state.WithClock(func() time.Time { return clock }))
	st.Use(middleware.Stack(middleware.Options{})...)
	st.Dispatch(actions.SetProduct(state.Product{ID: "PC54", Name: "Core Cotton Tee"}))
	st.Dispatch(actions.SetEmbellishmentType(state.EmbellishmentDTG))
	st.Dispatch(actions.UpdateQuantity(24))
	st.Dispatch(actions.UpdatePricing(calculator.Breakdown{UnitPrice: 1, TotalPrice: 24}))
	return st
}

func TestRepricerRefreshesStalePrice(t *testing.T) {
	t0 := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	st := pricedStore(t0)
	r := Repricer{
		Store:      st,
		Runner:     actions.NewRunner(st, actions.Extras{}, nil),
		Calculator: calculator.NewEngine(nil),
		Now:        func() time.Time { return t0.Add(2 * time.Minute) },
	}

	if err := r.tick(context.Background()); err != nil {
		t.Fatalf("tick returned error: %v", err)
	}
	if got := st.State().Pricing.TotalPrice; got != 24 {
		t.Fatalf("fresh price was recalculated: TotalPrice = %v", got)
	}

	r.Now = func() time.Time { return t0.Add(10 * time.Minute) }
	if err := r.tick(context.Background()); err != nil {
		t.Fatalf("tick returned error: %v", err)
	}
	if got := st.State().Pricing.TotalPrice; got != 228 {
		t.Fatalf("TotalPrice = %v, want 228 after reprice", got)
	}
}

func TestRepricerSkipsUnpricedQuote(t *testing.T) {
	st := state.NewStore()
	st.Dispatch(actions.SetProduct(state.Product{ID: "PC54", Name: "Core Cotton Tee"}))
	st.Dispatch(actions.SetEmbellishmentType(state.EmbellishmentDTG))
	r := Repricer{
		Store:      st,
		Runner:     actions.NewRunner(st, actions.Extras{}, nil),
		Calculator: calculator.NewEngine(nil),
	}
	if err := r.tick(context.Background()); err != nil {
		t.Fatalf("tick returned error: %v", err)
	}
	if !st.State().Pricing.LastCalculated.IsZero() {
		t.Fatalf("unpriced quote was priced by the repricer")
	}
}

func TestRepricerReportsFailure(t *testing.T) {
	t0 := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	st := pricedStore(t0)
	r := Repricer{
		Store:      st,
		Runner:     actions.NewRunner(st, actions.Extras{}, nil),
		Calculator: calculator.NewEngine(calculator.Formulas{}),
		Now:        func() time.Time { return t0.Add(time.Hour) },
	}
	if err := r.tick(context.Background()); err == nil {
		t.Fatalf("tick returned nil error, want a pricing failure")
	}
}

func TestRepricerAutoSaves(t *testing.T) {
	backend := storage.NewMemory()
	st := state.NewStore()
	p := middleware.NewPersister(backend, time.Hour, nil)
	p.Attach(st)
	defer p.Stop()

	r := Repricer{Store: st, Persister: p, Runner: actions.NewRunner(st, actions.Extras{}, nil)}
	if err := r.tick(context.Background()); err != nil {
		t.Fatalf("tick returned error: %v", err)
	}
	if !backend.Has(middleware.PersistKey) {
		t.Fatalf("auto-save did not write %s", middleware.PersistKey)
	}

	st.Dispatch(actions.ToggleFeature(state.FeatureAutoSave))
	backend.Remove(middleware.PersistKey)
	if err := r.tick(context.Background()); err != nil {
		t.Fatalf("tick returned error: %v", err)
	}
	if backend.Has(middleware.PersistKey) {
		t.Fatalf("auto-save wrote while disabled")
	}
}

func TestOpenWiresStoreAndRestores(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dir := t.TempDir()

	cfgPath := dir + "/config.toml"
	writeFile(t, cfgPath, "storage = \"file\"\nstorage_dir = \""+dir+"/data\"\npersist_debounce_ms = 3600000\n")

	env, err := Open(Options{ConfigPath: cfgPath, PrefsPath: dir + "/prefs.toml", LogWriter: io.Discard})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if env.Restored {
		t.Fatalf("fresh storage reported a restored state")
	}
	if env.Store.Dispatch(actions.UpdateQuantity(0)) {
		t.Fatalf("validation middleware not installed")
	}
	env.Store.Dispatch(actions.UpdateQuantity(72))
	if !env.Store.CanUndo() {
		t.Fatalf("history middleware not installed")
	}
	if err := env.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	again, err := Open(Options{ConfigPath: cfgPath, PrefsPath: dir + "/prefs.toml", LogWriter: io.Discard})
	if err != nil {
		t.Fatalf("second Open returned error: %v", err)
	}
	defer again.Close()
	if !again.Restored {
		t.Fatalf("state was not restored")
	}
	if got := again.Store.State().Selections.Quantity; got != 72 {
		t.Fatalf("restored quantity = %d, want 72", got)
	}
}

func TestFreshStateAppliesPrefsAndFeatures(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	writeFile(t, dir+"/config.toml", "storage = \"memory\"\n[features]\nsizeBreakdown = true\n")
	writeFile(t, dir+"/prefs.toml", "default_embellishment = \"screenprint\"\n")

	env, err := Open(Options{ConfigPath: dir + "/config.toml", PrefsPath: dir + "/prefs.toml", LogWriter: io.Discard})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer env.Close()

	s := env.Store.State()
	if s.Selections.EmbellishmentType != state.EmbellishmentScreenPrint {
		t.Fatalf("EmbellishmentType = %q, want screenprint", s.Selections.EmbellishmentType)
	}
	if !s.Features.SizeBreakdown {
		t.Fatalf("configured feature flag not applied")
	}
}

func TestOpenRejectsBadFormula(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	writeFile(t, dir+"/config.toml", "storage = \"memory\"\n[formulas.dtg]\nunit = \"(1 + \"\n")

	if _, err := Open(Options{ConfigPath: dir + "/config.toml", LogWriter: io.Discard}); err == nil {
		t.Fatalf("Open returned nil error for a broken formula")
	}
}
