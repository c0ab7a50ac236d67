package middleware

import (
	"go.uber.org/zap"

	"github.com/five82/swatch/internal/state"
)

// AnalyticsEvent is the event name sent for tracked actions.
const AnalyticsEvent = "pricing_action"

// Sink receives analytics events.
type Sink interface {
	Track(event string, props map[string]any)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(event string, props map[string]any)

// Track calls f.
func (f SinkFunc) Track(event string, props map[string]any) { f(event, props) }

// LogSink writes analytics events to a logger.
func LogSink(logger *zap.Logger) Sink {
	logger = logger.Named("analytics")
	return SinkFunc(func(event string, props map[string]any) {
		logger.Info(event, zap.Any("props", props))
	})
}

var trackedActions = map[state.ActionType]bool{
	state.TypeUpdateQuantity:       true,
	state.TypeSelectColor:          true,
	state.TypeUpdateSizes:          true,
	state.TypeSetEmbellishmentType: true,
	state.TypeUpdateLocations:      true,
	state.TypeSaveQuote:            true,
}

// Analytics forwards user-driven actions to sink. It never vetoes.
func Analytics(sink Sink) state.Middleware {
	return func(a state.Action, _ *state.State, _ *state.Store) bool {
		if !trackedActions[a.Type()] {
			return true
		}
		sink.Track(AnalyticsEvent, map[string]any{
			"action":    string(a.Type()),
			"payload":   a.Payload,
			"timestamp": a.Timestamp.UnixMilli(),
		})
		return true
	}
}
