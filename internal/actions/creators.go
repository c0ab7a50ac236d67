// Package actions builds payloads and runs effects against a store.
//
// Creators are pure functions returning plain payloads. Effects are
// multi-step workflows that call the pricing API or calculator and dispatch
// plain payloads between steps; they run through a Runner.
package actions

import (
	"maps"
	"slices"

	"github.com/five82/swatch/internal/calculator"
	"github.com/five82/swatch/internal/state"
)

// SetProduct replaces every product field with p's.
func SetProduct(p state.Product) state.SetProduct {
	return state.SetProduct{
		ID:          &p.ID,
		StyleNumber: &p.StyleNumber,
		Name:        &p.Name,
		Category:    &p.Category,
		BasePrice:   &p.BasePrice,
		Colors:      nonNil(p.Colors),
		Sizes:       nonNil(p.Sizes),
		Options:     nonNilMap(p.Options),
	}
}

// UpdateProductOption sets one product option on top of current.
func UpdateProductOption(current map[string]any, key string, value any) state.SetProduct {
	opts := maps.Clone(current)
	if opts == nil {
		opts = map[string]any{}
	}
	opts[key] = value
	return state.SetProduct{Options: opts}
}

func UpdateQuantity(n int) state.UpdateQuantity { return state.UpdateQuantity{Quantity: n} }

// SelectColor picks one color.
func SelectColor(color string) state.SelectColor { return state.SelectColor{Color: color} }

// SelectColors picks several colors; primary becomes the main color.
func SelectColors(primary string, colors []string) state.SelectColor {
	return state.SelectColor{Color: primary, MultiSelect: true, Colors: slices.Clone(colors)}
}

func UpdateSizes(sizes map[string]int) state.UpdateSizes {
	return state.UpdateSizes{Sizes: maps.Clone(sizes)}
}

func SetEmbellishmentType(kind state.Embellishment) state.SetEmbellishmentType {
	return state.SetEmbellishmentType{Kind: kind}
}

func UpdateLocations(locations []string) state.UpdateLocations {
	return state.UpdateLocations{Locations: slices.Clone(locations)}
}

func UpdateCustomOptions(opts map[string]any) state.UpdateCustomOptions {
	return state.UpdateCustomOptions{Options: maps.Clone(opts)}
}

func ResetSelections() state.ResetSelections { return state.ResetSelections{} }

// UpdatePricing converts a calculator result into a pricing update.
func UpdatePricing(b calculator.Breakdown) state.UpdatePricing {
	return state.UpdatePricing{
		UnitPrice:  &b.UnitPrice,
		TotalPrice: &b.TotalPrice,
		SetupFees:  &b.SetupFees,
		Discount:   &b.Discount,
		Breakdown:  nonNilMap(b.Details),
	}
}

func SetPricingMatrix(m map[string]any) state.SetPricingMatrix {
	return state.SetPricingMatrix{Matrix: m}
}

func SetCurrentQuote(q *state.Quote) state.SetCurrentQuote { return state.SetCurrentQuote{Quote: q} }

func SaveQuote(q state.Quote) state.SaveQuote { return state.SaveQuote{Quote: q} }

func DeleteQuote(id string) state.DeleteQuote { return state.DeleteQuote{QuoteID: id} }

// SetLoading toggles the loading indicator with an optional message.
func SetLoading(loading bool, message string) state.SetLoading {
	return state.SetLoading{Loading: loading, Message: message}
}

func AddError(msg string) state.AddError { return state.AddError{Error: msg} }

func ClearErrors() state.ClearErrors { return state.ClearErrors{} }

func AddWarning(msg string) state.AddWarning { return state.AddWarning{Warning: msg} }

func ClearWarnings() state.ClearWarnings { return state.ClearWarnings{} }

func SetActiveTab(tab string) state.SetActiveTab { return state.SetActiveTab{Tab: tab} }

func ToggleSection(section string) state.ToggleSection { return state.ToggleSection{Section: section} }

func SetModalOpen(open bool) state.SetModalOpen { return state.SetModalOpen{Open: open} }

func ToggleFeature(name string) state.ToggleFeature { return state.ToggleFeature{Feature: name} }

func ResetAll() state.ResetAll { return state.ResetAll{} }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

func nonNilMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Clone(m)
}
