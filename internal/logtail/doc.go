// Package logtail reads and filters swatch's own log file for the
// `swatch logs` command.
//
// # Reading Log Files
//
// Read extracts the last N lines with a ring buffer of size N:
//
//  1. Allocate ring buffer of size maxLines
//  2. For each line in file, store it at the current index and advance
//  3. Return the buffer starting at the oldest retained line
//
// Memory stays O(maxLines) however large the file grows.
//
// # Levels
//
// Level understands both encodings produced by internal/logging:
//
//	2026-10-16 09:12:01 UTC | WARN | store.validation | validation.go:41 | action vetoed | {...}
//	{"level":"WARN","time":"2026-10-16T09:12:01Z","msg":"action vetoed"}
//
// Filter keeps lines at or above a level; continuation lines travel with the
// entry before them.
//
// # Colorization
//
// Colorize renders console-format lines with lipgloss: dim timestamps,
// bold color-coded levels, blue component names. Lipgloss drops the colors
// automatically when output is not a terminal.
package logtail
