// Package app is the composition root for swatch.
//
// # Overview
//
// Open wires configuration, logging, storage, the state store with its
// middleware stack, the pricing API client and the effect runner into an
// Env. Run adds the background loops and hands the store to the TUI. The
// CLI subcommands use Open directly.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Open()     │ Build the runtime
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()          Read ~/.config/swatch/config.toml
//	       ├─────> logging.OpenFile()     zap logger on the swatch log file
//	       ├─────> calculator.Check()     Fail fast on broken formulas
//	       ├─────> storage.Open()         memory, file or badger backend
//	       ├─────> middleware.Restore()   Persisted state under 24h old
//	       ├─────> state.NewStore()       Store + middleware.Stack()
//	       └─────> actions.NewRunner()    Effects, API client when configured
//
//	Run():
//	       ├─────> telemetry.Serve()      /metrics when metrics_addr is set
//	       ├─────> LoadProduct effect     When a product was requested
//	       ├─────> StartRepricer()        Background reprice + auto-save
//	       └─────> ui.Run()               TUI (blocks)
//
// # Repricer
//
// Every 30 seconds by default the repricer flushes state to storage when
// the autoSave feature is on, and recalculates a quote whose price has gone
// stale. Consecutive pricing failures double the wait up to five minutes.
//
// # Error Handling
//
// Fatal errors (returned from Open/Run):
//   - Configuration file unreadable or invalid
//   - Formula expressions that do not compile
//   - Storage backend that cannot be opened
//
// Recoverable errors (logged):
//   - Pricing API failures inside effects (also shown in the UI)
//   - Storage write failures (the store keeps working in memory)
//   - Metrics listener failures
package app
