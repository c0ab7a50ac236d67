package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/swatch/internal/actions"
	"github.com/five82/swatch/internal/calculator"
	"github.com/five82/swatch/internal/middleware"
	"github.com/five82/swatch/internal/selectors"
	"github.com/five82/swatch/internal/state"
)

const (
	defaultRepriceInterval = 30 * time.Second
	maxBackoff             = 5 * time.Minute
)

// Repricer keeps a priced quote fresh and saves state on a timer.
type Repricer struct {
	Store      *state.Store
	Runner     *actions.Runner
	Calculator calculator.Calculator
	// Persister, when set, is flushed each tick while auto-save is enabled.
	Persister *middleware.Persister
	Logger    *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// StartRepricer launches a background goroutine that runs r at a fixed
// cadence, backing off while pricing keeps failing. It returns immediately.
func StartRepricer(ctx context.Context, r Repricer, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRepriceInterval
	}
	go func() {
		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(calculateBackoff(failures, interval)):
			}
			if err := r.tick(ctx); err != nil {
				failures++
			} else {
				failures = 0
			}
		}
	}()
}

// tick reprices a stale quote and runs the auto-save fallback.
func (r Repricer) tick(ctx context.Context) error {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}

	s := r.Store.State()
	if s.Features.AutoSave && r.Persister != nil {
		r.Persister.Flush()
	}

	// Only quotes priced at least once are kept fresh; an unpriced quote
	// waits for the user.
	if s.Pricing.LastCalculated.IsZero() || !selectors.IsPriceStale(s, now()) || !selectors.ReadyToCalculate(s) {
		return nil
	}
	if err := r.Runner.Run(ctx, actions.CalculatePricing(r.Calculator)); err != nil {
		logger.Warn("reprice failed", zap.Error(err))
		return err
	}
	logger.Debug("repriced stale quote")
	return nil
}

// calculateBackoff doubles interval per consecutive failure up to maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	d := interval
	for range failures {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
