package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Storage != storage.KindFile {
		t.Fatalf("Storage = %q, want %q", cfg.Storage, storage.KindFile)
	}
	wantDir, err := expandPath(defaultStorageDir)
	if err != nil {
		t.Fatalf("expandPath(defaultStorageDir) returned error: %v", err)
	}
	if cfg.StorageDir != wantDir {
		t.Fatalf("StorageDir = %q, want %q", cfg.StorageDir, wantDir)
	}
	if cfg.APIBase != "" {
		t.Fatalf("APIBase = %q, want empty", cfg.APIBase)
	}
	if cfg.PersistDebounce != time.Second || cfg.MaxHistory != 50 || cfg.RestoreMaxAge != 24*time.Hour {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
	if cfg.Features != *state.DefaultFeatures() {
		t.Fatalf("Features = %+v, want defaults", cfg.Features)
	}
	if len(cfg.Formulas) != 5 {
		t.Fatalf("len(Formulas) = %d, want 5", len(cfg.Formulas))
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(writeConfig(t, `
api_base = "  http://10.0.0.5:9999/  "
storage = " Badger "
storage_dir = "  ~/.swatch  "
namespace = "shop_"
persist_debounce_ms = 250
max_history = 10
stale_after_hours = 1.5
log_level = "DEBUG"
log_format = "json"
metrics_addr = " 127.0.0.1:9464 "

[features]
multiColorSelection = true
autoSave = false
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "http://10.0.0.5:9999" {
		t.Fatalf("APIBase = %q, want %q", cfg.APIBase, "http://10.0.0.5:9999")
	}
	if cfg.Storage != storage.KindBadger {
		t.Fatalf("Storage = %q, want %q", cfg.Storage, storage.KindBadger)
	}
	if cfg.StorageDir != filepath.Join(home, ".swatch") {
		t.Fatalf("StorageDir = %q, want it under HOME %q", cfg.StorageDir, home)
	}
	if cfg.Namespace != "shop_" {
		t.Fatalf("Namespace = %q, want shop_", cfg.Namespace)
	}
	if cfg.PersistDebounce != 250*time.Millisecond {
		t.Fatalf("PersistDebounce = %v, want 250ms", cfg.PersistDebounce)
	}
	if cfg.MaxHistory != 10 {
		t.Fatalf("MaxHistory = %d, want 10", cfg.MaxHistory)
	}
	if cfg.RestoreMaxAge != 90*time.Minute {
		t.Fatalf("RestoreMaxAge = %v, want 1h30m", cfg.RestoreMaxAge)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log settings = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" {
		t.Fatalf("MetricsAddr = %q", cfg.MetricsAddr)
	}
	if !cfg.Features.MultiColorSelection || cfg.Features.AutoSave || !cfg.Features.QuickQuote {
		t.Fatalf("Features = %+v, want multi-color on, auto-save off, quick quote kept", cfg.Features)
	}
}

func TestLoad_FormulaOverridesMergeWithDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `
[formulas.dtg]
unit = "11 * max(1, locations)"
min_quantity = 6

[formulas.sublimation]
unit = "4"
setup = "0"
discount = "0"
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	dtg := cfg.Formulas[state.EmbellishmentDTG]
	if dtg.Unit != "11 * max(1, locations)" || dtg.MinQuantity != 6 {
		t.Fatalf("dtg formula = %+v", dtg)
	}
	if dtg.Discount == "" || dtg.Setup == "" {
		t.Fatalf("dtg formula lost default expressions: %+v", dtg)
	}
	if cfg.Formulas["sublimation"].Unit != "4" {
		t.Fatalf("sublimation formula = %+v", cfg.Formulas["sublimation"])
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `
api_base = "   "
storage = ""
namespace = "  "
max_history = -4
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBase != "" || cfg.Storage != storage.KindFile || cfg.Namespace != defaultNamespace {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.MaxHistory != defaultMaxHistory {
		t.Fatalf("MaxHistory = %d, want %d", cfg.MaxHistory, defaultMaxHistory)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	cases := map[string]string{
		"toml":       `api_base = [`,
		"storage":    `storage = "postgres"`,
		"log format": `log_format = "xml"`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			if err == nil {
				t.Fatalf("Load returned nil error, want parse error")
			}
			if !strings.Contains(err.Error(), "parse config") {
				t.Fatalf("Load error = %q, want it to mention parse config", err.Error())
			}
		})
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	want := filepath.Join(home, "a/b")
	if got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
}

func TestExpandPath_EmptyErrors(t *testing.T) {
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}

func TestLogPath_DefaultsWhenLogDirEmpty(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	var cfg Config
	got := cfg.LogPath()
	if !strings.HasPrefix(got, home) {
		t.Fatalf("LogPath = %q, want it under HOME %q", got, home)
	}
	if !strings.HasSuffix(got, filepath.FromSlash("/swatch.log")) {
		t.Fatalf("LogPath = %q, want it to end with /swatch.log", got)
	}
}
