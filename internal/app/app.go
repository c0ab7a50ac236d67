package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/five82/swatch/internal/actions"
	"github.com/five82/swatch/internal/calculator"
	"github.com/five82/swatch/internal/config"
	"github.com/five82/swatch/internal/logging"
	"github.com/five82/swatch/internal/middleware"
	"github.com/five82/swatch/internal/prefs"
	"github.com/five82/swatch/internal/pricingapi"
	"github.com/five82/swatch/internal/selectors"
	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/storage"
	"github.com/five82/swatch/internal/telemetry"
	"github.com/five82/swatch/internal/ui"
)

// Options configure the swatch application.
type Options struct {
	ConfigPath   string
	PrefsPath    string // empty uses default ~/.config/swatch/prefs.toml
	RepriceEvery int    // seconds; zero uses default

	// Product is loaded at startup when the store has no product yet.
	Product state.Product

	// LogWriter replaces the log file, mainly for tests and CLI commands.
	LogWriter io.Writer
}

// Env is the wired runtime shared by the TUI and the CLI subcommands.
type Env struct {
	Config     config.Config
	Prefs      prefs.Prefs
	Logger     *zap.Logger
	Storage    *storage.Store
	Store      *state.Store
	Persister  *middleware.Persister
	Runner     *actions.Runner
	Calculator *calculator.Engine
	Cache      *selectors.Cache

	// Restored reports whether the initial state came from storage.
	Restored bool

	closeLog func() error
}

// Open loads configuration and wires storage, the store, its middleware and
// the effect runner. Callers must Close the result.
func Open(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	userPrefs, _ := prefs.Load(opts.PrefsPath)

	env := &Env{Config: cfg, Prefs: userPrefs, Cache: selectors.NewCache()}
	if opts.LogWriter != nil {
		env.Logger = logging.New(cfg.LogLevel, cfg.LogFormat, opts.LogWriter)
	} else {
		env.Logger, env.closeLog, err = logging.OpenFile(cfg.LogPath(), cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return nil, fmt.Errorf("open log: %w", err)
		}
	}

	env.Calculator = calculator.NewEngine(cfg.Formulas)
	if err := env.Calculator.Check(); err != nil {
		env.Close()
		return nil, fmt.Errorf("check formulas: %w", err)
	}

	env.Storage, err = storage.Open(cfg.Storage, cfg.StorageDir, cfg.Namespace, env.Logger)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	initial, restored := middleware.Restore(env.Storage, time.Now(), cfg.RestoreMaxAge)
	if !restored {
		initial = freshState(cfg, userPrefs)
	}
	env.Restored = restored

	env.Store = state.NewStore(
		state.WithInitialState(initial),
		state.WithLogger(env.Logger),
		state.WithMaxHistory(cfg.MaxHistory),
	)
	env.Persister = middleware.NewPersister(env.Storage, cfg.PersistDebounce, env.Logger)
	env.Persister.Attach(env.Store)
	env.Store.Use(middleware.Stack(middleware.Options{
		Logger:       env.Logger,
		FeatureFlags: true,
		Logging:      true,
		Performance:  true,
		Analytics:    middleware.LogSink(env.Logger),
		Persister:    env.Persister,
		History:      true,
		MaxHistory:   cfg.MaxHistory,
	})...)

	extras := actions.Extras{}
	if cfg.APIBase != "" {
		client, err := pricingapi.NewClient(cfg.APIBase)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("init pricing client: %w", err)
		}
		extras.API = client
	}
	env.Runner = actions.NewRunner(env.Store, extras, env.Logger)

	env.Logger.Info("swatch ready",
		zap.String("storage", cfg.Storage),
		zap.Bool("restored", restored),
		zap.Bool("online", extras.API != nil))
	return env, nil
}

// Close flushes pending state and releases storage and the log file.
func (e *Env) Close() error {
	var errs []error
	if e.Persister != nil {
		e.Persister.Stop()
		e.Persister.Flush()
	}
	if e.Storage != nil {
		errs = append(errs, e.Storage.Close())
	}
	if e.closeLog != nil {
		errs = append(errs, e.closeLog())
	}
	return errors.Join(errs...)
}

// Run boots the swatch TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	env, err := Open(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := telemetry.Serve(ctx, env.Config.MetricsAddr, env.Logger); err != nil {
			env.Logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()

	if opts.Product.ID != "" && opts.Product.ID != env.Store.State().Product.ID {
		if err := env.Runner.Run(ctx, actions.LoadProduct(opts.Product)); err != nil {
			env.Logger.Warn("initial product load failed", zap.Error(err))
		}
	}

	interval := defaultRepriceInterval
	if opts.RepriceEvery > 0 {
		interval = time.Duration(opts.RepriceEvery) * time.Second
	}
	StartRepricer(ctx, Repricer{
		Store:      env.Store,
		Runner:     env.Runner,
		Calculator: env.Calculator,
		Persister:  env.Persister,
		Logger:     env.Logger,
	}, interval)

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	return ui.Run(ui.Options{
		Context:    ctx,
		Store:      env.Store,
		Runner:     env.Runner,
		Calculator: env.Calculator,
		Cache:      env.Cache,
		ThemeName:  env.Prefs.Theme,
		PrefsPath:  prefsPath,
		Logger:     env.Logger,
	})
}

// freshState is the starting tree when nothing was restored.
func freshState(cfg config.Config, p prefs.Prefs) *state.State {
	s := state.Initial()
	features := cfg.Features
	s.Features = &features
	if p.DefaultEmbellishment != state.EmbellishmentNone {
		s.Selections.EmbellishmentType = p.DefaultEmbellishment
	}
	return s
}
