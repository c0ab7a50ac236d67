package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/swatch/internal/calculator"
	"github.com/five82/swatch/internal/logging"
	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/storage"
)

// Config is swatch's runtime configuration.
type Config struct {
	APIBase         string
	Storage         string
	StorageDir      string
	Namespace       string
	PersistDebounce time.Duration
	MaxHistory      int
	RestoreMaxAge   time.Duration
	LogLevel        string
	LogFormat       string
	LogDir          string
	MetricsAddr     string
	Features        state.Features
	Formulas        calculator.Formulas
}

const (
	defaultConfigPath      = "~/.config/swatch/config.toml"
	defaultStorageDir      = "~/.local/share/swatch"
	defaultLogDir          = "~/.local/share/swatch/logs"
	defaultNamespace       = storage.DefaultPrefix
	defaultPersistDebounce = time.Second
	defaultMaxHistory      = state.DefaultMaxHistory
	defaultRestoreMaxAge   = 24 * time.Hour
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Storage:         storage.KindFile,
		StorageDir:      mustExpand(defaultStorageDir),
		Namespace:       defaultNamespace,
		PersistDebounce: defaultPersistDebounce,
		MaxHistory:      defaultMaxHistory,
		RestoreMaxAge:   defaultRestoreMaxAge,
		LogLevel:        "info",
		LogFormat:       logging.FormatConsole,
		LogDir:          mustExpand(defaultLogDir),
		Features:        *state.DefaultFeatures(),
		Formulas:        calculator.DefaultFormulas(),
	}
}

type rawFeatures struct {
	MultiColorSelection *bool `toml:"multiColorSelection"`
	SizeBreakdown       *bool `toml:"sizeBreakdown"`
	QuickQuote          *bool `toml:"quickQuote"`
	AutoSave            *bool `toml:"autoSave"`
	PriceOptimization   *bool `toml:"priceOptimization"`
}

type rawConfig struct {
	APIBase           string                        `toml:"api_base"`
	Storage           string                        `toml:"storage"`
	StorageDir        string                        `toml:"storage_dir"`
	Namespace         string                        `toml:"namespace"`
	PersistDebounceMS *int                          `toml:"persist_debounce_ms"`
	MaxHistory        int                           `toml:"max_history"`
	StaleAfterHours   *float64                      `toml:"stale_after_hours"`
	LogLevel          string                        `toml:"log_level"`
	LogFormat         string                        `toml:"log_format"`
	LogDir            string                        `toml:"log_dir"`
	MetricsAddr       string                        `toml:"metrics_addr"`
	Features          rawFeatures                   `toml:"features"`
	Formulas          map[string]calculator.Formula `toml:"formulas"`
}

// Load locates and parses the swatch config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.APIBase = strings.TrimRight(strings.TrimSpace(raw.APIBase), "/")

	switch kind := strings.ToLower(strings.TrimSpace(raw.Storage)); kind {
	case "":
	case storage.KindMemory, storage.KindFile, storage.KindBadger:
		cfg.Storage = kind
	default:
		return Config{}, fmt.Errorf("parse config: unknown storage %q", raw.Storage)
	}

	if dir := strings.TrimSpace(raw.StorageDir); dir != "" {
		cfg.StorageDir = mustExpand(dir)
	}
	if dir := strings.TrimSpace(raw.LogDir); dir != "" {
		cfg.LogDir = mustExpand(dir)
	}
	if ns := strings.TrimSpace(raw.Namespace); ns != "" {
		cfg.Namespace = ns
	}
	if raw.PersistDebounceMS != nil && *raw.PersistDebounceMS >= 0 {
		cfg.PersistDebounce = time.Duration(*raw.PersistDebounceMS) * time.Millisecond
	}
	if raw.MaxHistory > 0 {
		cfg.MaxHistory = raw.MaxHistory
	}
	if raw.StaleAfterHours != nil && *raw.StaleAfterHours > 0 {
		cfg.RestoreMaxAge = time.Duration(*raw.StaleAfterHours * float64(time.Hour))
	}
	if lvl := strings.TrimSpace(raw.LogLevel); lvl != "" {
		cfg.LogLevel = strings.ToLower(lvl)
	}
	switch format := strings.ToLower(strings.TrimSpace(raw.LogFormat)); format {
	case "":
	case logging.FormatConsole, logging.FormatJSON:
		cfg.LogFormat = format
	default:
		return Config{}, fmt.Errorf("parse config: unknown log_format %q", raw.LogFormat)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	applyFeatures(&cfg.Features, raw.Features)

	for name, f := range raw.Formulas {
		kind := state.Embellishment(strings.TrimSpace(name))
		cfg.Formulas[kind] = mergeFormula(cfg.Formulas[kind], f)
	}

	return cfg, nil
}

// LogPath returns the swatch log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/swatch.log")
	}
	return filepath.Join(c.LogDir, "swatch.log")
}

func applyFeatures(dst *state.Features, raw rawFeatures) {
	set := func(field *bool, v *bool) {
		if v != nil {
			*field = *v
		}
	}
	set(&dst.MultiColorSelection, raw.MultiColorSelection)
	set(&dst.SizeBreakdown, raw.SizeBreakdown)
	set(&dst.QuickQuote, raw.QuickQuote)
	set(&dst.AutoSave, raw.AutoSave)
	set(&dst.PriceOptimization, raw.PriceOptimization)
}

// mergeFormula overlays the non-empty fields of override on base.
func mergeFormula(base, override calculator.Formula) calculator.Formula {
	if s := strings.TrimSpace(override.Unit); s != "" {
		base.Unit = s
	}
	if s := strings.TrimSpace(override.Setup); s != "" {
		base.Setup = s
	}
	if s := strings.TrimSpace(override.Discount); s != "" {
		base.Discount = s
	}
	if override.MinQuantity > 0 {
		base.MinQuantity = override.MinQuantity
	}
	return base
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
