package state

import (
	"bytes"
	"container/list"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// ErrNilImport is returned when an export carries no state.
var ErrNilImport = errors.New("state: import has no state")

// Middleware inspects an action before it reaches the reducer. prev is the
// state the action will be applied to. Returning false vetoes the action.
type Middleware func(a Action, prev *State, store *Store) bool

// Listener is notified after the state changed.
type Listener func(current, previous *State, a Action)

// Change describes one accepted state transition.
type Change struct {
	Action   Action
	Previous *State
	Current  *State
}

// ChangeHook observes every transition after subscribers ran.
type ChangeHook func(Change)

// Store owns the current state and serializes every transition.
//
// Dispatch, Undo, Redo and Import hold one mutex for the whole transition,
// including subscriber notification. Listeners and hooks must therefore not
// call Dispatch synchronously. State is a lock-free read.
type Store struct {
	mu      sync.Mutex
	current atomic.Pointer[State]
	history atomic.Pointer[History]
	seq     uint64

	regMu      sync.RWMutex
	middleware []Middleware
	subs       *list.List
	subIndex   map[uint64]*list.Element
	hooks      *list.List
	hookIndex  map[uint64]*list.Element
	nextID     uint64

	maxHistory int
	now        func() time.Time
	logger     *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithInitialState seeds the store; missing sub-trees take initial values.
func WithInitialState(s *State) Option {
	return func(st *Store) {
		st.current.Store(Normalize(s))
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(st *Store) {
		if l != nil {
			st.logger = l
		}
	}
}

// WithMaxHistory sets the capacity used when a history buffer is installed.
func WithMaxHistory(n int) Option {
	return func(st *Store) {
		if n > 0 {
			st.maxHistory = n
		}
	}
}

// WithChangeHook registers a change hook at construction time.
func WithChangeHook(h ChangeHook) Option {
	return func(st *Store) {
		st.OnChange(h)
	}
}

// WithClock replaces the time source used to stamp actions.
func WithClock(now func() time.Time) Option {
	return func(st *Store) {
		if now != nil {
			st.now = now
		}
	}
}

// NewStore builds a store holding the initial state unless overridden.
func NewStore(opts ...Option) *Store {
	s := &Store{
		subs:       list.New(),
		subIndex:   make(map[uint64]*list.Element),
		hooks:      list.New(),
		hookIndex:  make(map[uint64]*list.Element),
		maxHistory: DefaultMaxHistory,
		now:        time.Now,
		logger:     zap.NewNop(),
	}
	s.current.Store(Initial())
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.Named("store")
	return s
}

// State returns the current state. The returned tree must be treated as
// read-only.
func (s *Store) State() *State {
	return s.current.Load()
}

// Logger returns the store's logger for middleware that wants to share it.
func (s *Store) Logger() *zap.Logger {
	return s.logger
}

// Use appends middleware. Order of registration is order of execution.
func (s *Store) Use(mw ...Middleware) {
	s.regMu.Lock()
	defer s.regMu.Unlock()
	for _, m := range mw {
		if m != nil {
			s.middleware = append(s.middleware, m)
		}
	}
}

// Dispatch stamps p, runs the middleware pipeline and, unless vetoed, applies
// the reducer and notifies subscribers. It reports whether the action was
// applied. A vetoed action leaves the state untouched and notifies nobody.
func (s *Store) Dispatch(p Payload) bool {
	if p == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	a := Action{Payload: p, Timestamp: s.now(), Seq: s.seq}
	prev := s.current.Load()

	s.regMu.RLock()
	pipeline := s.middleware
	s.regMu.RUnlock()

	for _, mw := range pipeline {
		if !mw(a, prev, s) {
			s.logger.Debug("action vetoed", zap.String("action", string(a.Type())), zap.Uint64("seq", a.Seq))
			return false
		}
	}

	next := Reduce(prev, a)
	s.current.Store(next)
	s.notify(a, prev, next)
	return true
}

// DispatchRaw decodes a wire action and dispatches it. Unknown or malformed
// actions are logged and ignored.
func (s *Store) DispatchRaw(actionType string, body []byte) bool {
	p, err := DecodeAction(actionType, body)
	if err != nil {
		s.logger.Warn("ignoring action", zap.String("action", actionType), zap.Error(err))
		return false
	}
	return s.Dispatch(p)
}

// EnsureHistory installs a history buffer if none exists and returns the
// active one. max <= 0 uses the store's configured capacity.
func (s *Store) EnsureHistory(max int) *History {
	if h := s.history.Load(); h != nil {
		return h
	}
	if max <= 0 {
		max = s.maxHistory
	}
	h := NewHistory(max)
	if s.history.CompareAndSwap(nil, h) {
		return h
	}
	return s.history.Load()
}

// History returns the installed history buffer, or nil.
func (s *Store) History() *History {
	return s.history.Load()
}

// CanUndo reports whether Undo would change the state.
func (s *Store) CanUndo() bool {
	h := s.history.Load()
	return h != nil && h.CanUndo()
}

// CanRedo reports whether Redo would change the state.
func (s *Store) CanRedo() bool {
	h := s.history.Load()
	return h != nil && h.CanRedo()
}

// Undo restores the state from before the most recent recorded action. It
// bypasses middleware and the reducer and notifies with an UNDO action.
func (s *Store) Undo() bool {
	h := s.history.Load()
	if h == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	target, ok := h.undo(prev)
	if !ok {
		return false
	}
	s.replace(Undo{}, prev, target)
	return true
}

// Redo re-applies the most recently undone state.
func (s *Store) Redo() bool {
	h := s.history.Load()
	if h == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.current.Load()
	target, ok := h.redo()
	if !ok {
		return false
	}
	s.replace(Redo{}, prev, target)
	return true
}

func (s *Store) replace(p Payload, prev, next *State) {
	s.seq++
	a := Action{Payload: p, Timestamp: s.now(), Seq: s.seq}
	next = Normalize(next)
	s.current.Store(next)
	s.notify(a, prev, next)
}

// Export is a serializable snapshot of the store.
type Export struct {
	State         *State    `json:"state"`
	HistoryLength int       `json:"historyLength"`
	HistoryCursor int       `json:"historyIndex"`
	Subscribers   int       `json:"subscriberCount"`
	Middleware    int       `json:"middlewareCount"`
	Timestamp     time.Time `json:"timestamp"`
}

// Export captures the current state and history metadata.
func (s *Store) Export() Export {
	s.regMu.RLock()
	subs, mws := s.subs.Len(), len(s.middleware)
	s.regMu.RUnlock()

	e := Export{
		State:       s.State(),
		Subscribers: subs,
		Middleware:  mws,
		Timestamp:   s.now(),
	}
	if h := s.history.Load(); h != nil {
		e.HistoryLength = h.Len()
		e.HistoryCursor = h.Cursor()
	}
	return e
}

// ExportJSON encodes Export as indented JSON.
func (s *Store) ExportJSON() ([]byte, error) {
	data, err := json.MarshalIndent(s.Export(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return data, nil
}

// Import replaces the state with the exported one and clears history, so the
// imported state is the oldest reachable state. History is left empty rather
// than seeded with the imported tree; CanUndo is false either way.
// Subscribers are notified with an IMPORT action.
func (s *Store) Import(e Export) error {
	if e.State == nil {
		return ErrNilImport
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if h := s.history.Load(); h != nil {
		h.reset()
	}
	prev := s.current.Load()
	s.replace(Import{}, prev, e.State)
	return nil
}

// ImportJSON decodes data produced by ExportJSON and imports it.
func (s *Store) ImportJSON(data []byte) error {
	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("decode export: %w", err)
	}
	return s.Import(e)
}

// Get returns a deep copy of the value at a dot-separated path such as
// "selections.quantity". An empty path returns the whole tree. Values come
// back in their JSON shape (maps, slices, float64, string, bool).
func (s *Store) Get(path string) (any, bool) {
	return Lookup(s.State(), path)
}

// Lookup resolves a dot path against st. See Store.Get.
func Lookup(st *State, path string) (any, bool) {
	data, err := json.Marshal(st)
	if err != nil {
		return nil, false
	}
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, false
	}
	if path == "" {
		return root, true
	}
	cur := root
	for _, part := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

type subscription struct {
	id       uint64
	listener Listener
	selector func(*State) any
	path     string
	actions  map[ActionType]struct{}
}

// SubscribeOption narrows when a listener fires.
type SubscribeOption func(*subscription)

// WithSelector fires the listener only when the value at path changes.
func WithSelector(path string) SubscribeOption {
	return func(sub *subscription) {
		sub.path = path
		sub.selector = func(st *State) any {
			v, _ := Lookup(st, path)
			return v
		}
	}
}

// WithSelectorFunc fires the listener only when fn's result changes. Results
// are compared by their JSON encoding.
func WithSelectorFunc(fn func(*State) any) SubscribeOption {
	return func(sub *subscription) {
		sub.path = ""
		sub.selector = fn
	}
}

// WithActions fires the listener only for the listed action types.
func WithActions(types ...ActionType) SubscribeOption {
	return func(sub *subscription) {
		sub.actions = make(map[ActionType]struct{}, len(types))
		for _, t := range types {
			sub.actions[t] = struct{}{}
		}
	}
}

// Subscribe registers a listener and returns a function that removes it.
// Listeners fire in registration order.
func (s *Store) Subscribe(l Listener, opts ...SubscribeOption) func() {
	sub := &subscription{listener: l}
	for _, opt := range opts {
		opt(sub)
	}

	s.regMu.Lock()
	s.nextID++
	sub.id = s.nextID
	s.subIndex[sub.id] = s.subs.PushBack(sub)
	s.regMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.regMu.Lock()
			defer s.regMu.Unlock()
			if el, ok := s.subIndex[sub.id]; ok {
				s.subs.Remove(el)
				delete(s.subIndex, sub.id)
			}
		})
	}
}

// OnChange registers a hook for every transition and returns its remover.
func (s *Store) OnChange(h ChangeHook) func() {
	if h == nil {
		return func() {}
	}
	s.regMu.Lock()
	s.nextID++
	id := s.nextID
	s.hookIndex[id] = s.hooks.PushBack(h)
	s.regMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.regMu.Lock()
			defer s.regMu.Unlock()
			if el, ok := s.hookIndex[id]; ok {
				s.hooks.Remove(el)
				delete(s.hookIndex, id)
			}
		})
	}
}

// SubscriberCount returns the number of registered listeners.
func (s *Store) SubscriberCount() int {
	s.regMu.RLock()
	defer s.regMu.RUnlock()
	return s.subs.Len()
}

func (s *Store) notify(a Action, prev, next *State) {
	s.regMu.RLock()
	subs := make([]*subscription, 0, s.subs.Len())
	for el := s.subs.Front(); el != nil; el = el.Next() {
		subs = append(subs, el.Value.(*subscription))
	}
	hooks := make([]ChangeHook, 0, s.hooks.Len())
	for el := s.hooks.Front(); el != nil; el = el.Next() {
		hooks = append(hooks, el.Value.(ChangeHook))
	}
	s.regMu.RUnlock()

	for _, sub := range subs {
		if !sub.matches(a, prev, next) {
			continue
		}
		s.call(sub, a, prev, next)
	}

	change := Change{Action: a, Previous: prev, Current: next}
	for _, h := range hooks {
		s.callHook(h, change)
	}
}

func (sub *subscription) matches(a Action, prev, next *State) bool {
	if sub.actions != nil {
		if _, ok := sub.actions[a.Type()]; !ok {
			return false
		}
	}
	if sub.selector == nil {
		return true
	}
	if prev == next {
		return false
	}
	if sub.path != "" && sameSubtree(sub.path, prev, next) {
		return false
	}
	return !equalJSON(sub.selector(prev), sub.selector(next))
}

func (s *Store) call(sub *subscription, a Action, prev, next *State) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked",
				zap.Uint64("subscriber", sub.id),
				zap.String("action", string(a.Type())),
				zap.Any("panic", r))
		}
	}()
	sub.listener(next, prev, a)
}

func (s *Store) callHook(h ChangeHook, c Change) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("change hook panicked",
				zap.String("action", string(c.Action.Type())),
				zap.Any("panic", r))
		}
	}()
	h(c)
}

// sameSubtree reports whether the top-level sub-tree named by path's first
// segment is the same pointer in both states. Shared sub-trees cannot differ.
func sameSubtree(path string, prev, next *State) bool {
	if prev == nil || next == nil {
		return false
	}
	head, _, _ := strings.Cut(path, ".")
	switch head {
	case "product":
		return prev.Product == next.Product
	case "selections":
		return prev.Selections == next.Selections
	case "pricing":
		return prev.Pricing == next.Pricing
	case "quotes":
		return prev.Quotes == next.Quotes
	case "ui":
		return prev.UI == next.UI
	case "features":
		return prev.Features == next.Features
	default:
		return false
	}
}

func equalJSON(a, b any) bool {
	ea, errA := json.Marshal(a)
	eb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}
