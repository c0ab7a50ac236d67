package middleware

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/telemetry"
)

// SlowActionThreshold is one frame at 60 fps.
const SlowActionThreshold = 16 * time.Millisecond

// Performance times each accepted action from the point it passes this stage
// until subscribers have been notified.
type Performance struct {
	logger    *zap.Logger
	threshold time.Duration
	now       func() time.Time

	once    sync.Once
	mu      sync.Mutex
	seq     uint64
	started time.Time
}

// NewPerformance builds a timer that warns above threshold.
func NewPerformance(logger *zap.Logger, threshold time.Duration) *Performance {
	return &Performance{
		logger:    logger.Named("performance"),
		threshold: threshold,
		now:       time.Now,
	}
}

// Middleware returns the pipeline stage.
func (p *Performance) Middleware() state.Middleware {
	return func(a state.Action, _ *state.State, store *state.Store) bool {
		p.once.Do(func() { store.OnChange(p.finish) })
		p.mu.Lock()
		p.seq = a.Seq
		p.started = p.now()
		p.mu.Unlock()
		return true
	}
}

func (p *Performance) finish(c state.Change) {
	p.mu.Lock()
	if c.Action.Seq != p.seq {
		p.mu.Unlock()
		return
	}
	elapsed := p.now().Sub(p.started)
	p.seq = 0
	p.mu.Unlock()

	telemetry.ObserveDispatch(string(c.Action.Type()), elapsed)
	if elapsed > p.threshold {
		p.logger.Warn("slow action",
			zap.String("action", string(c.Action.Type())),
			zap.Duration("elapsed", elapsed))
	}
}
