// Package mathutils holds small generic numeric helpers and the Watch
// stopwatch, used by the kernel, engine, and cmd/hyperlp packages.
package mathutils

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// FloatEquals reports whether a and b differ by less than an optional
// epsilon (args[0]), defaulting to 0.001.
func FloatEquals(a float64, b float64, args ...interface{}) bool {
	if len(args) >= 1 {
		return math.Abs(a-b) < args[0].(float64)
	}
	return math.Abs(a-b) < 0.001
}

// Max returns the larger of x and y.
func Max[T constraints.Ordered](x, y T) T {
	if x < y {
		return y
	}
	return x
}

// Min returns the smaller of x and y.
func Min[T constraints.Ordered](x, y T) T {
	if y < x {
		return y
	}
	return x
}

// Median sorts n in place and returns its median.
func Median(n []int) int {
	sort.Ints(n) // sort numbers
	idx := len(n) / 2
	if len(n)%2 == 0 { // even
		return (n[idx-1] + n[idx]) / 2
	}
	return n[idx]
}

// Clamp restricts x to [lo,hi]. Used by kernel.Options.Normalize to
// bound workgroup_size against its cap.
func Clamp[T constraints.Ordered](x, lo, hi T) T {
	return Max(lo, Min(x, hi))
}
