package middleware

import (
	"go.uber.org/zap"

	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/telemetry"
)

// FeatureFlags vetoes actions whose feature is switched off in the state the
// action would apply to.
func FeatureFlags(logger *zap.Logger) state.Middleware {
	logger = logger.Named("features")
	return func(a state.Action, prev *state.State, _ *state.Store) bool {
		flag := requiredFeature(a.Payload)
		if flag == "" || prev == nil || prev.Features == nil || prev.Features.Enabled(flag) {
			return true
		}
		logger.Warn("feature disabled",
			zap.String("action", string(a.Type())),
			zap.String("feature", flag))
		telemetry.CountVeto("features", string(a.Type()))
		return false
	}
}

func requiredFeature(p state.Payload) string {
	switch v := p.(type) {
	case state.SelectColor:
		if v.MultiSelect {
			return state.FeatureMultiColorSelection
		}
	case state.UpdateSizes:
		return state.FeatureSizeBreakdown
	}
	return ""
}
