// Package selectors derives read-only views from the state tree.
//
// Selectors are plain functions of a *state.State. Expensive ones can be
// wrapped in a Memo, which caches by state pointer so an entry is exact for
// the tree version it was computed from.
package selectors
