package selectors

import (
	"math"
	"time"

	"github.com/five82/swatch/internal/state"
)

// StaleAfter is how long a calculated price stays fresh.
const StaleAfter = 5 * time.Minute

// DiscountPercentage is the discount as a whole percent of the undiscounted
// total.
func DiscountPercentage(s *state.State) int {
	p := s.Pricing
	if p.TotalPrice == 0 || p.Discount == 0 {
		return 0
	}
	return int(math.Round(p.Discount / (p.TotalPrice + p.Discount) * 100))
}

// IsPriceStale reports whether pricing was never calculated or is older than
// StaleAfter at now.
func IsPriceStale(s *state.State, now time.Time) bool {
	return IsPriceStaleAfter(s, now, StaleAfter)
}

// IsPriceStaleAfter is IsPriceStale with an explicit window.
func IsPriceStaleAfter(s *state.State, now time.Time, window time.Duration) bool {
	last := s.Pricing.LastCalculated
	if last.IsZero() {
		return true
	}
	return now.Sub(last) > window
}

// SavingsMessage returns the calculator's savings note, if any.
func SavingsMessage(s *state.State) string {
	msg, _ := s.Pricing.Breakdown["savingsMessage"].(string)
	return msg
}
