package selectors

import (
	"time"

	"github.com/five82/swatch/internal/state"
)

// QuoteData is everything needed to save the current configuration.
type QuoteData struct {
	Product    state.Product    `json:"product"`
	Selections state.Selections `json:"selections"`
	Pricing    state.Pricing    `json:"pricing"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}

// CurrentQuoteData copies the product, selections and pricing stamped at now.
func CurrentQuoteData(s *state.State, now time.Time) QuoteData {
	return QuoteData{
		Product:    s.Product.Clone(),
		Selections: s.Selections.Clone(),
		Pricing:    s.Pricing.Clone(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// PricingSummary is the figures shown next to a quote.
type PricingSummary struct {
	Quantity   int     `json:"quantity"`
	UnitPrice  float64 `json:"unitPrice"`
	Subtotal   float64 `json:"subtotal"`
	SetupFees  float64 `json:"setupFees"`
	Discount   float64 `json:"discount"`
	TotalPrice float64 `json:"totalPrice"`
}

// Summary computes the pricing summary.
func Summary(s *state.State) PricingSummary {
	qty := TotalQuantity(s)
	return PricingSummary{
		Quantity:   qty,
		UnitPrice:  s.Pricing.UnitPrice,
		Subtotal:   float64(qty) * s.Pricing.UnitPrice,
		SetupFees:  s.Pricing.SetupFees,
		Discount:   s.Pricing.Discount,
		TotalPrice: s.Pricing.TotalPrice,
	}
}

// ValidationStatus summarises whether the quote is in a priceable state.
type ValidationStatus struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Validation reports the current validation status.
func Validation(s *state.State) ValidationStatus {
	return ValidationStatus{
		IsValid:  len(s.UI.Errors) == 0 && HasValidSelections(s),
		Errors:   s.UI.Errors,
		Warnings: s.UI.Warnings,
	}
}

// ReadyToCalculate reports whether pricing can run now.
func ReadyToCalculate(s *state.State) bool {
	return HasProductData(s) && HasValidSelections(s) && !s.UI.Loading
}

// EmbroideryData is the embroidery-specific view.
type EmbroideryData struct {
	Locations     []string       `json:"locations"`
	StitchCounts  map[string]int `json:"stitchCounts"`
	TotalStitches int            `json:"totalStitches"`
	LocationCount int            `json:"locationCount"`
}

// Embroidery returns the embroidery view, or false for other methods.
func Embroidery(s *state.State) (EmbroideryData, bool) {
	if s.Selections.EmbellishmentType != state.EmbellishmentEmbroidery {
		return EmbroideryData{}, false
	}
	return EmbroideryData{
		Locations:     s.Selections.Locations,
		StitchCounts:  StitchCounts(s),
		TotalStitches: TotalStitchCount(s),
		LocationCount: LocationCount(s),
	}, true
}

// ScreenPrintData is the screen print specific view.
type ScreenPrintData struct {
	Locations   []string `json:"locations"`
	ColorCount  int      `json:"colorCount"`
	ScreenCount int      `json:"screenCount"`
}

// ScreenPrint returns the screen print view, or false for other methods.
func ScreenPrint(s *state.State) (ScreenPrintData, bool) {
	if s.Selections.EmbellishmentType != state.EmbellishmentScreenPrint {
		return ScreenPrintData{}, false
	}
	return ScreenPrintData{
		Locations:   s.Selections.Locations,
		ColorCount:  ColorCount(s),
		ScreenCount: ScreenCount(s),
	}, true
}
