package industry

import (
	"math"
	"strconv"
)

// roundEpsilon absorbs float noise before the material ceiling so that a
// value like 899.9999999 rounds to 900, not 900-and-change.
const roundEpsilon = 1e-6

// applyMaterialRounding converts a bonused fractional demand into the
// integer quantity the game charges: ceil with an epsilon guard, and a
// floor of one unit whenever the recipe line demands anything at all.
func applyMaterialRounding(x float64, recipeDemands bool) int64 {
	q := int64(math.Ceil(x - roundEpsilon))
	if recipeDemands && q < 1 {
		q = 1
	}
	if q < 0 {
		q = 0
	}
	return q
}

// ceilDiv is integer ceiling division for positive divisors.
func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// roundTime rounds a bonused job time to the nearest whole second, with a
// minimum of one.
func roundTime(x float64) int64 {
	t := int64(math.Round(x))
	if t < 1 {
		t = 1
	}
	return t
}

func itoa32(v int32) string {
	return strconv.FormatInt(int64(v), 10)
}
