package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"console warn", "2026-10-16 09:12:01 UTC | WARN | store.validation | validation.go:41 | action vetoed", "WARN"},
		{"console info", "2026-10-16 09:12:01 UTC | INFO | app | app.go:12 | swatch ready", "INFO"},
		{"json", `{"level":"ERROR","msg":"persist failed"}`, "ERROR"},
		{"continuation", "    github.com/five82/swatch/internal/state.(*Store).call", ""},
		{"broken json", `{"level":`, ""},
		{"unknown level", "a | LOUD | b", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Level(tt.input); got != tt.want {
				t.Errorf("Level(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	lines := []string{
		"t | DEBUG | store | s.go:1 | dispatch",
		"t | WARN | store.validation | v.go:2 | action vetoed",
		"    detail for the warning",
		"t | INFO | app | a.go:3 | ready",
		"t | ERROR | persistence | p.go:4 | persist failed",
	}

	got := Filter(lines, "warn")
	want := []string{lines[1], lines[2], lines[4]}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Filter(warn) = %v, want %v", got, want)
	}

	if got := Filter(lines, ""); len(got) != len(lines) {
		t.Errorf("Filter(\"\") returned %d lines, want %d", len(got), len(lines))
	}
}

func TestColorizeKeepsText(t *testing.T) {
	line := "2026-10-16 09:12:01 UTC | WARN | store.validation | validation.go:41 | action vetoed"
	got := Colorize(line, DefaultPalette())
	for _, part := range []string{"WARN", "store.validation", "action vetoed"} {
		if !strings.Contains(got, part) {
			t.Errorf("Colorize() = %q, missing %q", got, part)
		}
	}

	plain := "    continuation line"
	if got := ColorizeLines([]string{plain}, DefaultPalette()); got[0] != plain {
		t.Errorf("ColorizeLines() changed a continuation line: %q", got[0])
	}
}
