package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		" WARN ":  zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"chatty":  zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewJSONHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("warn", FormatJSON, &buf).Named("store")
	logger.Info("hidden")
	logger.Warn("shown", zap.Int("quantity", 12))
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["msg"] != "shown" || entry["component"] != "store" || entry["quantity"] != float64(12) {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	New("info", FormatConsole, &buf).Info("hello")
	if !strings.Contains(buf.String(), " | INFO | ") || !strings.Contains(buf.String(), "hello") {
		t.Fatalf("unexpected console output %q", buf.String())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "swatch.log")
	logger, closeFn, err := OpenFile(path, "info", FormatConsole)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	logger.Info("written")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "written") {
		t.Fatalf("log file missing entry: %q", data)
	}
}
