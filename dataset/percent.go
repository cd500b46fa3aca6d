package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParsePercent converts text such as "12.5%" or "1,234.5%" to a number. The
// trailing percent sign is optional and comma separators are removed. Empty
// and non-numeric text is an error, never zero.
func ParsePercent(s string) (float64, error) {
	t := strings.TrimSpace(s)
	t = strings.TrimSuffix(t, "%")
	t = strings.ReplaceAll(t, ",", "")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0, fmt.Errorf("%w: empty value", ErrMalformedPercent)
	}
	if !isDecimal(t) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPercent, s)
	}
	v, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedPercent, s)
	}
	return v, nil
}

// FormatPercent renders v the way ParsePercent reads it back: shortest
// decimal form, no separators, "%" suffix.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// isDecimal reports whether s uses only plain decimal notation. ParseFloat
// alone would also accept hex floats, underscores, and named infinities.
func isDecimal(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return false
		}
	}
	return true
}
