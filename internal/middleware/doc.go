// Package middleware provides the store's action pipeline stages.
//
// Stack assembles them in the order the store expects:
//
//	validation → feature flags → logging → performance → analytics → persistence → history
//
// Validation always runs. Stages that can veto come first so observers and
// history only see actions that will be applied.
package middleware
