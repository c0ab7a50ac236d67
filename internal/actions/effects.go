package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/swatch/internal/calculator"
	"github.com/five82/swatch/internal/pricingapi"
	"github.com/five82/swatch/internal/selectors"
	"github.com/five82/swatch/internal/state"
)

// ErrQuoteNotFound is reported when a quote is neither saved locally nor
// known to the API.
var ErrQuoteNotFound = errors.New("quote not found")

// Extras are the collaborators effects may use.
type Extras struct {
	// API is optional; without it effects work from local state only.
	API        pricingapi.API
	GenerateID func() string
	Now        func() time.Time
}

// Env is what an effect sees while it runs.
type Env struct {
	Dispatch func(state.Payload) bool
	GetState func() *state.State
	Extras
}

// Effect is a multi-step workflow. Failures are reported to the store as
// ADD_ERROR and also returned.
type Effect func(ctx context.Context, env Env) error

// Runner executes effects against a store.
type Runner struct {
	Store  *state.Store
	Extras Extras
	Logger *zap.Logger
}

// NewRunner builds a runner with default id and clock sources filled in.
func NewRunner(store *state.Store, extras Extras, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{Store: store, Extras: extras, Logger: logger.Named("effects")}
}

func (r *Runner) env() Env {
	extras := r.Extras
	if extras.GenerateID == nil {
		extras.GenerateID = uuid.NewString
	}
	if extras.Now == nil {
		extras.Now = time.Now
	}
	return Env{
		Dispatch: r.Store.Dispatch,
		GetState: r.Store.State,
		Extras:   extras,
	}
}

// Run executes eff in the calling goroutine. It must not be called from a
// store listener.
func (r *Runner) Run(ctx context.Context, eff Effect) error {
	err := eff(ctx, r.env())
	if err != nil && r.Logger != nil {
		r.Logger.Debug("effect failed", zap.Error(err))
	}
	return err
}

// Go runs eff in a new goroutine. The channel receives its result and is
// then closed.
func (r *Runner) Go(ctx context.Context, eff Effect) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- r.Run(ctx, eff)
	}()
	return done
}

// LoadProduct installs product and fetches the pricing matrix for its
// category.
func LoadProduct(product state.Product) Effect {
	return func(ctx context.Context, env Env) error {
		env.Dispatch(SetLoading(true, "Loading product..."))
		env.Dispatch(SetProduct(product))

		if env.API != nil {
			matrix, err := pricingapi.FetchMatrix(ctx, env.API, product.Category)
			if err != nil {
				env.Dispatch(AddError(err.Error()))
				env.Dispatch(SetLoading(false, ""))
				return fmt.Errorf("load pricing matrix: %w", err)
			}
			env.Dispatch(SetPricingMatrix(matrix))
		}

		env.Dispatch(ClearErrors())
		env.Dispatch(SetLoading(false, ""))
		return nil
	}
}

// CalculatePricing validates the current selections with calc and, when
// valid, stores the calculated price.
func CalculatePricing(calc calculator.Calculator) Effect {
	return func(_ context.Context, env Env) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("calculator panicked: %v", r)
				env.Dispatch(AddError("Failed to calculate pricing: " + err.Error()))
			}
		}()

		sel := env.GetState().Selections.Clone()
		v := calc.ValidateSelections(sel)
		if !v.IsValid {
			for _, msg := range v.Errors {
				env.Dispatch(AddError(msg))
			}
			return fmt.Errorf("invalid selections: %d errors", len(v.Errors))
		}

		env.Dispatch(ClearWarnings())
		for _, msg := range v.Warnings {
			env.Dispatch(AddWarning(msg))
		}

		b, err := calc.Calculate(sel.Quantity, sel)
		if err != nil {
			env.Dispatch(AddError("Failed to calculate pricing: " + err.Error()))
			return fmt.Errorf("calculate pricing: %w", err)
		}
		env.Dispatch(UpdatePricing(b))
		return nil
	}
}

// DefaultQuoteName names a quote saved without a name.
func DefaultQuoteName(now time.Time) string {
	return "Quote " + now.Format("1/2/2006")
}

// SaveCurrentQuote snapshots product, selections and pricing as a new quote.
func SaveCurrentQuote(name string) Effect {
	return func(ctx context.Context, env Env) error {
		now := env.Now()
		data := selectors.CurrentQuoteData(env.GetState(), now)
		if name == "" {
			name = DefaultQuoteName(now)
		}
		quote := state.Quote{
			ID:         env.GenerateID(),
			Name:       name,
			Product:    data.Product,
			Selections: data.Selections,
			Pricing:    data.Pricing,
			CreatedAt:  data.CreatedAt,
			UpdatedAt:  data.UpdatedAt,
		}

		if env.API != nil {
			if _, err := pricingapi.SaveQuote(ctx, env.API, quote); err != nil {
				env.Dispatch(AddError("Failed to save quote: " + err.Error()))
				return fmt.Errorf("save quote: %w", err)
			}
		}

		// SAVE_QUOTE also makes the quote current, so one undo reverts the save.
		env.Dispatch(SaveQuote(quote))
		return nil
	}
}

// LoadQuote restores a quote's product and selections and makes it current.
// Saved quotes are used first; otherwise the API is asked.
func LoadQuote(id string) Effect {
	return func(ctx context.Context, env Env) error {
		env.Dispatch(SetLoading(true, "Loading quote..."))

		quote, err := findQuote(ctx, env, id)
		if err != nil {
			env.Dispatch(AddError("Failed to load quote: " + err.Error()))
			env.Dispatch(SetLoading(false, ""))
			return fmt.Errorf("load quote %s: %w", id, err)
		}

		env.Dispatch(SetProduct(quote.Product))
		multiColor := env.GetState().Features.MultiColorSelection
		for _, p := range replay(quote.Selections, multiColor) {
			env.Dispatch(p)
		}
		env.Dispatch(SetCurrentQuote(&quote))
		env.Dispatch(SetLoading(false, ""))
		return nil
	}
}

func findQuote(ctx context.Context, env Env, id string) (state.Quote, error) {
	if q, ok := selectors.QuoteByID(env.GetState(), id); ok {
		return q.Clone(), nil
	}
	if env.API == nil {
		return state.Quote{}, ErrQuoteNotFound
	}
	q, err := pricingapi.FetchQuote(ctx, env.API, id)
	if pricingapi.IsNotFound(err) {
		return state.Quote{}, ErrQuoteNotFound
	}
	if err != nil {
		return state.Quote{}, err
	}
	return q, nil
}

// replay turns saved selections into the plain actions that rebuild them.
// The primary color is always restored with a single-color select; the full
// color set follows only when multi-color selection is enabled, since the
// feature gate would veto it otherwise. Embellishment type goes before custom
// options because switching method clears them.
func replay(sel state.Selections, multiColor bool) []state.Payload {
	out := []state.Payload{UpdateQuantity(sel.Quantity)}
	primary := sel.Color
	if primary == "" && len(sel.Colors) > 0 {
		primary = sel.Colors[0]
	}
	if primary != "" {
		out = append(out, SelectColor(primary))
	}
	if multiColor && len(sel.Colors) > 1 {
		out = append(out, SelectColors(primary, sel.Colors))
	}
	if len(sel.Sizes) > 0 {
		out = append(out, UpdateSizes(sel.Sizes))
	}
	out = append(out,
		SetEmbellishmentType(sel.EmbellishmentType),
		UpdateLocations(sel.Locations),
	)
	if len(sel.CustomOptions) > 0 {
		out = append(out, UpdateCustomOptions(sel.CustomOptions))
	}
	return out
}
