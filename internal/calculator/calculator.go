// Package calculator prices selections from configurable formulas.
package calculator

import (
	"github.com/five82/swatch/internal/state"
)

// Validation is the outcome of checking selections before pricing.
type Validation struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Breakdown is one pricing result.
type Breakdown struct {
	UnitPrice  float64        `json:"unitPrice"`
	TotalPrice float64        `json:"totalPrice"`
	SetupFees  float64        `json:"setupFees"`
	Discount   float64        `json:"discount"`
	Details    map[string]any `json:"details"`
}

// Calculator validates and prices a set of selections.
type Calculator interface {
	ValidateSelections(sel state.Selections) Validation
	Calculate(quantity int, sel state.Selections) (Breakdown, error)
}
