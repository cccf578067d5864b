// Package mathx has the numeric helpers used when converting readings.
package mathx

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp limits v to [lo, hi]. Swapped bounds are accepted.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	return min(max(v, lo), hi)
}

// InRange reports lo <= v <= hi.
func InRange[T constraints.Ordered](v, lo, hi T) bool { return lo <= v && v <= hi }

// RoundInt32 rounds half away from zero and saturates to the int32 range.
// NaN gives 0.
func RoundInt32(f float64) int32 {
	if math.IsNaN(f) {
		return 0
	}
	return int32(Clamp(math.Round(f), math.MinInt32, math.MaxInt32))
}
