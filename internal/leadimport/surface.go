package leadimport

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// surfacePrefix matches the leading decimal number of a cleaned value.
var surfacePrefix = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)`)

// ParseSurface parses a surface area written with comma or dot decimals,
// e.g. "150,5 m²" -> 150.5. Everything but digits, ',' and '.' is dropped and
// the first comma becomes the decimal point. ok is false when no finite
// number can be read.
func ParseSurface(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Replace(b.String(), ",", ".", 1)

	num := surfacePrefix.FindString(cleaned)
	if num == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
