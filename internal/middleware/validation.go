package middleware

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/five82/swatch/internal/state"
	"github.com/five82/swatch/internal/telemetry"
)

// payloadValidate checks the struct tags declared on payloads.
var payloadValidate = validator.New()

// Validation vetoes payloads that fail their field constraints.
func Validation(logger *zap.Logger) state.Middleware {
	logger = logger.Named("validation")
	return func(a state.Action, _ *state.State, _ *state.Store) bool {
		if err := ValidatePayload(a.Payload); err != nil {
			logger.Warn("invalid action",
				zap.String("action", string(a.Type())),
				zap.Uint64("seq", a.Seq),
				zap.Error(err))
			telemetry.CountVeto("validation", string(a.Type()))
			return false
		}
		return true
	}
}

// ValidatePayload returns the first constraint p violates, or nil.
func ValidatePayload(p state.Payload) error {
	if p == nil {
		return errors.New("empty action")
	}
	if sq, ok := p.(state.SaveQuote); ok && strings.TrimSpace(sq.Quote.ID) == "" {
		return errors.New("quote id is required")
	}
	if err := payloadValidate.Struct(p); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return nil
		}
		return err
	}
	return nil
}
