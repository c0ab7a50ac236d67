// Package ui is swatch's terminal quote builder.
//
// # Architecture Overview
//
// The UI is a single Bubble Tea program over one state.Store. Key presses
// dispatch plain payloads straight into the store; slow work (pricing, saving
// and loading quotes) runs as actions effects inside tea commands so the
// event loop never waits on the pricing API.
//
// # Event Flow
//
//  1. Run() builds the Model and subscribes to the store
//  2. Every accepted change posts a stateMsg into the program from its own
//     goroutine, so a dispatch made inside Update cannot deadlock
//  3. Update re-reads store.State() and the view re-renders
//  4. Effects report back with effectMsg, shown as a one-line flash
//
// # Screen Layout
//
//   - Header: product, price status badge, last action
//   - Selections: quantity, embellishment, colors, sizes, locations, flags
//   - Pricing: memoized summary, discount, savings, price age
//   - Messages: ui errors and warnings from the store, plus the flash line
//   - Saved quotes: most recent first, j/k to move, enter to load
//
// # Key Bindings
//
//   - +/-, ]/[: Quantity by 1 or 12
//   - e: Next embellishment method
//   - c: Next color (adds colors when multi-color is on)
//   - m: Toggle the multi-color feature
//   - x: Reset selections
//   - u/r: Undo/redo
//   - p: Calculate price
//   - s: Save quote
//   - T: Cycle theme (saved to prefs)
//   - ?: Help
//   - q or Ctrl+C: Quit
package ui
