package selectors

import "github.com/five82/swatch/internal/state"

// HasProductData reports whether a product has been loaded.
func HasProductData(s *state.State) bool {
	return s.Product.ID != "" && s.Product.Name != ""
}

// AvailableColors returns the product's colors, never nil.
func AvailableColors(s *state.State) []string {
	if s.Product.Colors == nil {
		return []string{}
	}
	return s.Product.Colors
}

// AvailableSizes returns the product's sizes, never nil.
func AvailableSizes(s *state.State) []string {
	if s.Product.Sizes == nil {
		return []string{}
	}
	return s.Product.Sizes
}
