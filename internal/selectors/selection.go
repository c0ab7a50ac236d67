package selectors

import "github.com/five82/swatch/internal/state"

// Defaults for method-specific options that have not been set.
const (
	DefaultColorCount   = 1
	DefaultScreenCount  = 1
	DefaultPrintSize    = "standard"
	DefaultTransferSize = "medium"
)

// TotalQuantity is the sum of the size breakdown, or the plain quantity when
// no sizes are set.
func TotalQuantity(s *state.State) int {
	total := 0
	for _, n := range s.Selections.Sizes {
		total += n
	}
	if total == 0 {
		return s.Selections.Quantity
	}
	return total
}

// LocationCount returns the number of decoration locations.
func LocationCount(s *state.State) int {
	return len(s.Selections.Locations)
}

// HasValidSelections reports whether enough is selected to price.
func HasValidSelections(s *state.State) bool {
	return s.Selections.Quantity > 0 && s.Selections.EmbellishmentType != state.EmbellishmentNone
}

// StitchCounts returns per-location stitch counts from the custom options.
func StitchCounts(s *state.State) map[string]int {
	return intMap(s.Selections.CustomOptions["stitchCounts"])
}

// TotalStitchCount sums StitchCounts.
func TotalStitchCount(s *state.State) int {
	total := 0
	for _, n := range StitchCounts(s) {
		total += n
	}
	return total
}

// ColorCount is the screen print ink color count.
func ColorCount(s *state.State) int {
	if n, ok := intValue(s.Selections.CustomOptions["colorCount"]); ok && n > 0 {
		return n
	}
	return DefaultColorCount
}

// ScreenCount is the number of screens a screen print job needs.
func ScreenCount(s *state.State) int {
	if n, ok := intValue(s.Selections.CustomOptions["screenCount"]); ok && n > 0 {
		return n
	}
	return DefaultScreenCount
}

// PrintSize is the DTG print size.
func PrintSize(s *state.State) string {
	if v, ok := stringValue(s.Selections.CustomOptions["printSize"]); ok {
		return v
	}
	return DefaultPrintSize
}

// TransferSize is the DTF transfer size.
func TransferSize(s *state.State) string {
	if v, ok := stringValue(s.Selections.CustomOptions["transferSize"]); ok {
		return v
	}
	return DefaultTransferSize
}
