package calculator

import (
	"errors"
	"fmt"
	"math"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/five82/swatch/internal/selectors"
	"github.com/five82/swatch/internal/state"
)

// ErrNoFormula is returned when no formula exists for an embellishment.
var ErrNoFormula = errors.New("calculator: no formula for embellishment")

// Formula holds the expressions that price one embellishment method.
//
// Expressions see: quantity, locations, colors, screens, stitches,
// printSize, transferSize and options (the raw custom options).
type Formula struct {
	Unit        string `toml:"unit"`
	Setup       string `toml:"setup"`
	Discount    string `toml:"discount"`
	MinQuantity int    `toml:"min_quantity"`
}

// Formulas maps each embellishment to its formula.
type Formulas map[state.Embellishment]Formula

// DefaultFormulas returns the built-in price list.
func DefaultFormulas() Formulas {
	tiers := "quantity >= 144 ? 0.15 : quantity >= 72 ? 0.10 : quantity >= 48 ? 0.05 : 0"
	return Formulas{
		state.EmbellishmentEmbroidery: {
			Unit:        "8.0 + max(0, stitches - 8000) / 1000 * 1.25 + max(0, locations - 1) * 3.5",
			Setup:       "0",
			Discount:    tiers,
			MinQuantity: 12,
		},
		state.EmbellishmentCapEmb: {
			Unit:        "10.0 + max(0, stitches - 8000) / 1000 * 1.5",
			Setup:       "0",
			Discount:    tiers,
			MinQuantity: 24,
		},
		state.EmbellishmentScreenPrint: {
			Unit:        "2.5 + colors * 0.6 * max(1, locations)",
			Setup:       "screens * 25",
			Discount:    tiers,
			MinQuantity: 24,
		},
		state.EmbellishmentDTG: {
			Unit:        "(printSize == 'large' ? 12.5 : 9.5) * max(1, locations)",
			Setup:       "0",
			Discount:    tiers,
			MinQuantity: 1,
		},
		state.EmbellishmentDTF: {
			Unit:        "(transferSize == 'large' ? 7.0 : transferSize == 'small' ? 3.5 : 5.0) * max(1, locations)",
			Setup:       "quantity < 24 ? 15 : 0",
			Discount:    tiers,
			MinQuantity: 1,
		},
	}
}

// Engine evaluates Formulas with expr, caching compiled programs.
type Engine struct {
	formulas Formulas

	mu       sync.Mutex
	programs map[string]*exprvm.Program
}

var _ Calculator = (*Engine)(nil)

// NewEngine builds an engine; nil formulas use DefaultFormulas.
func NewEngine(formulas Formulas) *Engine {
	if formulas == nil {
		formulas = DefaultFormulas()
	}
	return &Engine{formulas: formulas, programs: make(map[string]*exprvm.Program)}
}

// Check compiles every configured expression so typos surface at startup.
func (e *Engine) Check() error {
	var errs []error
	for kind, f := range e.formulas {
		for _, src := range []string{f.Unit, f.Setup, f.Discount} {
			if src == "" {
				continue
			}
			if _, err := e.program(src); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", kind, err))
			}
		}
	}
	return errors.Join(errs...)
}

// ValidateSelections checks that sel can be priced.
func (e *Engine) ValidateSelections(sel state.Selections) Validation {
	v := Validation{Errors: []string{}, Warnings: []string{}}
	if sel.Quantity < 1 {
		v.Errors = append(v.Errors, "Quantity must be at least 1")
	}
	if sel.EmbellishmentType == state.EmbellishmentNone {
		v.Errors = append(v.Errors, "Select an embellishment type")
	} else if f, ok := e.formulas[sel.EmbellishmentType]; !ok {
		v.Errors = append(v.Errors, fmt.Sprintf("No pricing available for %s", sel.EmbellishmentType))
	} else {
		qty := selectors.TotalQuantity(&state.State{Selections: &sel})
		if f.MinQuantity > 0 && qty < f.MinQuantity {
			v.Warnings = append(v.Warnings, fmt.Sprintf("Minimum for %s is %d pieces; small order pricing applies", sel.EmbellishmentType, f.MinQuantity))
		}
		if isEmbroidery(sel.EmbellishmentType) && selectors.TotalStitchCount(&state.State{Selections: &sel}) == 0 {
			v.Warnings = append(v.Warnings, "No stitch counts set; using base stitch allowance")
		}
	}
	v.IsValid = len(v.Errors) == 0
	return v
}

// Calculate prices quantity pieces of sel.
func (e *Engine) Calculate(quantity int, sel state.Selections) (Breakdown, error) {
	f, ok := e.formulas[sel.EmbellishmentType]
	if !ok {
		return Breakdown{}, fmt.Errorf("%w: %q", ErrNoFormula, sel.EmbellishmentType)
	}
	if quantity < 1 {
		return Breakdown{}, fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	env := environment(quantity, sel)

	unit, err := e.eval(f.Unit, env)
	if err != nil {
		return Breakdown{}, fmt.Errorf("unit price: %w", err)
	}
	setup, err := e.eval(f.Setup, env)
	if err != nil {
		return Breakdown{}, fmt.Errorf("setup fees: %w", err)
	}
	rate, err := e.eval(f.Discount, env)
	if err != nil {
		return Breakdown{}, fmt.Errorf("discount: %w", err)
	}
	rate = math.Min(math.Max(rate, 0), 1)

	subtotal := round2(unit * float64(quantity))
	discount := round2(subtotal * rate)
	b := Breakdown{
		UnitPrice:  round2(unit * (1 - rate)),
		SetupFees:  round2(setup),
		Discount:   discount,
		TotalPrice: round2(subtotal - discount + setup),
		Details: map[string]any{
			"method":       string(sel.EmbellishmentType),
			"quantity":     quantity,
			"basePrice":    round2(unit),
			"subtotal":     subtotal,
			"discountRate": rate,
		},
	}
	if rate > 0 {
		b.Details["savingsMessage"] = fmt.Sprintf("You save %.0f%% on %d pieces", rate*100, quantity)
	}
	return b, nil
}

func isEmbroidery(kind state.Embellishment) bool {
	return kind == state.EmbellishmentEmbroidery || kind == state.EmbellishmentCapEmb
}

func environment(quantity int, sel state.Selections) map[string]any {
	view := &state.State{Selections: &sel}
	return map[string]any{
		"quantity":     quantity,
		"locations":    len(sel.Locations),
		"colors":       selectors.ColorCount(view),
		"screens":      selectors.ColorCount(view) * max(1, len(sel.Locations)),
		"stitches":     selectors.TotalStitchCount(view),
		"printSize":    selectors.PrintSize(view),
		"transferSize": selectors.TransferSize(view),
		"options":      sel.CustomOptions,
	}
}

func (e *Engine) eval(src string, env map[string]any) (float64, error) {
	if src == "" {
		return 0, nil
	}
	program, err := e.program(src)
	if err != nil {
		return 0, err
	}
	out, err := exprlang.Run(program, env)
	if err != nil {
		return 0, fmt.Errorf("evaluate %q: %w", src, err)
	}
	switch n := out.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("evaluate %q: result %T is not a number", src, out)
	}
}

func (e *Engine) program(src string) (*exprvm.Program, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.programs[src]; ok {
		return p, nil
	}
	p, err := exprlang.Compile(src,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	e.programs[src] = p
	return p, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
