package middleware

import (
	"sync"

	"go.uber.org/zap"

	"github.com/five82/swatch/internal/state"
)

// Logging logs each action before it is applied and the sub-trees it
// changed afterwards.
func Logging(logger *zap.Logger) state.Middleware {
	logger = logger.Named("actions")
	var once sync.Once
	return func(a state.Action, _ *state.State, store *state.Store) bool {
		once.Do(func() {
			store.OnChange(func(c state.Change) {
				logger.Debug("state changed",
					zap.String("action", string(c.Action.Type())),
					zap.Uint64("seq", c.Action.Seq),
					zap.Strings("changed", ChangedSubtrees(c.Previous, c.Current)))
			})
		})
		logger.Debug("dispatch",
			zap.String("action", string(a.Type())),
			zap.Uint64("seq", a.Seq),
			zap.Any("payload", a.Payload))
		return true
	}
}

// ChangedSubtrees names the top-level sub-trees that differ between prev and
// next. Shared sub-trees are unchanged by construction.
func ChangedSubtrees(prev, next *state.State) []string {
	if prev == nil || next == nil {
		return nil
	}
	var out []string
	if prev.Product != next.Product {
		out = append(out, "product")
	}
	if prev.Selections != next.Selections {
		out = append(out, "selections")
	}
	if prev.Pricing != next.Pricing {
		out = append(out, "pricing")
	}
	if prev.Quotes != next.Quotes {
		out = append(out, "quotes")
	}
	if prev.UI != next.UI {
		out = append(out, "ui")
	}
	if prev.Features != next.Features {
		out = append(out, "features")
	}
	return out
}
