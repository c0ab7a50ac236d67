package middleware

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/storage"
	"github.com/five82/swatch/internal/telemetry"
)

const (
	// PersistKey is the storage key the persisted state is written under.
	PersistKey = "persistedState"
	// DefaultPersistDebounce is the quiet period before a write.
	DefaultPersistDebounce = time.Second
	// DefaultRestoreMaxAge bounds how old a persisted state may be to restore.
	DefaultRestoreMaxAge = 24 * time.Hour
)

// Persisted is the document written to storage.
type Persisted struct {
	State     PersistedState `json:"state"`
	Timestamp int64          `json:"timestamp"`
}

// PersistedState is the subset of the tree that survives restarts.
type PersistedState struct {
	Selections *state.Selections `json:"selections"`
	Quotes     *state.Quotes     `json:"quotes"`
	Features   *state.Features   `json:"features"`
}

// Persister writes the store's state to a backend after dispatches settle.
type Persister struct {
	backend  storage.Backend
	debounce time.Duration
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	store   *state.Store
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewPersister builds a persister. debounce <= 0 uses DefaultPersistDebounce.
func NewPersister(backend storage.Backend, debounce time.Duration, logger *zap.Logger) *Persister {
	if debounce <= 0 {
		debounce = DefaultPersistDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{
		backend:  backend,
		debounce: debounce,
		logger:   logger.Named("persistence"),
		now:      time.Now,
	}
}

// Middleware returns the pipeline stage. Every passing action restarts the
// debounce timer. Undo, redo and import bypass middleware, so they are
// picked up through a change hook installed on first use.
func (p *Persister) Middleware() state.Middleware {
	return func(_ state.Action, _ *state.State, store *state.Store) bool {
		p.Attach(store)
		p.schedule()
		return true
	}
}

// Attach binds the persister to store so Flush works before the first
// dispatch. Only the first store is kept.
func (p *Persister) Attach(store *state.Store) {
	p.mu.Lock()
	if p.store != nil {
		p.mu.Unlock()
		return
	}
	p.store = store
	p.mu.Unlock()

	store.OnChange(func(c state.Change) {
		switch c.Action.Type() {
		case state.TypeUndo, state.TypeRedo, state.TypeImport:
			p.schedule()
		}
	})
}

func (p *Persister) schedule() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	if p.timer != nil {
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(p.debounce, func() { p.fire(gen) })
}

func (p *Persister) fire(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || p.stopped {
		p.mu.Unlock()
		return
	}
	p.timer = nil
	store := p.store
	p.mu.Unlock()

	p.write(store)
}

// Flush cancels any pending write and writes the current state now. It
// reports whether a write happened and succeeded.
func (p *Persister) Flush() bool {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	store := p.store
	p.mu.Unlock()

	if store == nil {
		return false
	}
	return p.write(store)
}

// Stop cancels any pending write. Later dispatches no longer schedule
// writes; Flush still works.
func (p *Persister) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	p.gen++
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Persister) write(store *state.Store) bool {
	s := store.State()
	doc := Persisted{
		State: PersistedState{
			Selections: s.Selections,
			Quotes:     s.Quotes,
			Features:   s.Features,
		},
		Timestamp: p.now().UnixMilli(),
	}
	ok := p.backend.Set(PersistKey, doc)
	telemetry.CountPersist(ok)
	if !ok {
		p.logger.Warn("persist failed")
	} else {
		p.logger.Debug("state persisted")
	}
	return ok
}

// Restore loads a persisted state no older than maxAge. The result has the
// persisted sub-trees over an initial tree.
func Restore(backend storage.Backend, now time.Time, maxAge time.Duration) (*state.State, bool) {
	var doc Persisted
	if !backend.Get(PersistKey, &doc) {
		return nil, false
	}
	if maxAge > 0 && now.Sub(time.UnixMilli(doc.Timestamp)) >= maxAge {
		return nil, false
	}
	return state.Normalize(&state.State{
		Selections: doc.State.Selections,
		Quotes:     doc.State.Quotes,
		Features:   doc.State.Features,
	}), true
}
