// Package state holds the pricing state tree and the store that owns it.
//
// # Overview
//
// Every part of swatch (the quote builder UI, the repricer loop, effects that
// talk to the pricing API) reads and changes one tree through a Store. The
// tree has six sub-trees: product, selections, pricing, quotes, ui and
// features. Changes happen only by dispatching actions.
//
// # Data Flow
//
//	Dispatch(payload)
//	      ↓
//	stamp Action{Payload, Timestamp, Seq}
//	      ↓
//	middleware[0] → middleware[1] → ... ──false──→ vetoed, nothing happens
//	      ↓ all true
//	Reduce(prev, action) → next
//	      ↓
//	subscribers (registration order, filtered)
//	      ↓
//	change hooks
//
// # Core Types
//
// Payload:
//   - Closed set of action variants (UpdateQuantity, SelectColor, ...)
//   - The unexported reduce method seals the set inside this package
//   - DecodeAction builds a payload from a wire type and JSON body
//
// State:
//   - Root pointer plus one pointer per sub-tree
//   - The reducer copies the root and replaces only the sub-tree it touches
//   - A *State returned by the store is never mutated afterwards
//
// History:
//   - Ring of pre-action snapshots with a cursor
//   - Installed lazily by the history middleware via EnsureHistory
//   - Recording after an undo drops the redo branch
//
// # Concurrency Model
//
// Dispatch, Undo, Redo and Import are serialized by a mutex held across
// middleware, reduction and notification. State() is an atomic load and
// never blocks. Registries (middleware, subscribers, hooks) have their own
// lock so a listener may subscribe or unsubscribe while being notified.
//
// Listeners and hooks run inside the critical section. They must not call
// Dispatch synchronously; hand the work to a goroutine instead.
//
// # Subscriber Filters
//
//	store.Subscribe(fn)                                   // every change
//	store.Subscribe(fn, state.WithSelector("pricing"))    // pricing changed
//	store.Subscribe(fn, state.WithActions(state.TypeSaveQuote))
//
// Selector results are compared by JSON encoding. Path selectors first check
// whether the top-level sub-tree pointer changed, which skips most work.
//
// # Undo, Redo, Import
//
// These bypass middleware and the reducer. Subscribers see them as actions
// of type UNDO, REDO and IMPORT, so an action-filtered subscriber only hears
// about them if it lists those types. Import clears history.
package state
