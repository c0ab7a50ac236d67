// Package config loads swatch's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/swatch/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Storage: file backend under ~/.local/share/swatch
//   - Namespace: swatch_
//   - Persist debounce: 1s
//   - Undo history: 50 snapshots
//   - Restored state discarded after 24 hours
//   - Log file: ~/.local/share/swatch/logs/swatch.log
//   - API base: empty (offline; effects work from local state)
//   - Metrics: disabled unless metrics_addr is set
//
// # TOML Format
//
//	api_base = "http://127.0.0.1:8088"
//	storage = "badger"            # memory | file | badger
//	storage_dir = "~/.local/share/swatch"
//	namespace = "swatch_"
//	persist_debounce_ms = 1000
//	max_history = 50
//	stale_after_hours = 24
//	log_level = "info"
//	log_format = "console"        # console | json
//	metrics_addr = "127.0.0.1:9464"
//
//	[features]
//	multiColorSelection = true
//
//	[formulas.dtg]
//	unit = "(printSize == 'large' ? 13 : 10) * max(1, locations)"
//	min_quantity = 6
//
// Feature keys override the built-in defaults one by one. Formula tables
// overlay the built-in formula for that embellishment; empty fields keep the
// default expression. Tilde expansion is performed on directory fields.
package config
