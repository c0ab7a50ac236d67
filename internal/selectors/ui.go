package selectors

import (
	"slices"

	"github.com/five82/swatch/internal/state"
)

// HasErrors reports whether any user-facing errors are pending.
func HasErrors(s *state.State) bool { return len(s.UI.Errors) > 0 }

// HasWarnings reports whether any warnings are pending.
func HasWarnings(s *state.State) bool { return len(s.UI.Warnings) > 0 }

// IsSectionExpanded reports whether section is expanded.
func IsSectionExpanded(s *state.State, section string) bool {
	return slices.Contains(s.UI.ExpandedSections, section)
}

// FeatureEnabled reports whether a named feature flag is on.
func FeatureEnabled(s *state.State, feature string) bool {
	return s.Features.Enabled(feature)
}
