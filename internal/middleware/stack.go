package middleware

import (
	"go.uber.org/zap"

	"github.com/five82/swatch/internal/state"
)

// Options selects the optional stages of the pipeline.
type Options struct {
	Logger *zap.Logger

	FeatureFlags bool
	Logging      bool
	Performance  bool

	// Analytics receives tracked actions when non-nil.
	Analytics Sink
	// Persister debounces state writes when non-nil.
	Persister *Persister

	History    bool
	MaxHistory int
}

// Stack builds the middleware list for opts.
func Stack(opts Options) []state.Middleware {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	stack := []state.Middleware{Validation(logger)}
	if opts.FeatureFlags {
		stack = append(stack, FeatureFlags(logger))
	}
	if opts.Logging {
		stack = append(stack, Logging(logger))
	}
	if opts.Performance {
		stack = append(stack, NewPerformance(logger, SlowActionThreshold).Middleware())
	}
	if opts.Analytics != nil {
		stack = append(stack, Analytics(opts.Analytics))
	}
	if opts.Persister != nil {
		stack = append(stack, opts.Persister.Middleware())
	}
	if opts.History {
		stack = append(stack, History(opts.MaxHistory))
	}
	return stack
}
