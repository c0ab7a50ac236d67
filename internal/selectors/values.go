package selectors

import "math"

// intValue reads a JSON-shaped number. Values decoded from JSON arrive as
// float64, values set in Go usually as int.
func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(math.Round(n)), true
	case float32:
		return int(math.Round(float64(n))), true
	default:
		return 0, false
	}
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok && s != ""
}

// intMap converts a map of numbers into map[string]int, dropping
// non-numeric entries.
func intMap(v any) map[string]int {
	out := map[string]int{}
	switch m := v.(type) {
	case map[string]int:
		for k, n := range m {
			out[k] = n
		}
	case map[string]any:
		for k, raw := range m {
			if n, ok := intValue(raw); ok {
				out[k] = n
			}
		}
	case map[string]float64:
		for k, f := range m {
			out[k] = int(math.Round(f))
		}
	}
	return out
}
