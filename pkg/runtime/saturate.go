package runtime

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Bounds of a stack value.
const (
	MinValue = math.MinInt32
	MaxValue = math.MaxInt32
)

// Clamp bounds v to the closed range [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v <= lo {
		return lo
	}
	if v >= hi {
		return hi
	}
	return v
}

// Saturate converts an intermediate float result into a stack value. Values
// outside the int32 range stick to the nearest bound instead of wrapping and
// fractions are truncated toward zero.
func Saturate(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	return int32(Clamp(v, MinValue, MaxValue))
}
