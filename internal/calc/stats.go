// Basic calculation functions
package calc

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// Number is any value type the summaries can average
type Number interface {
	constraints.Integer | constraints.Float
}

// Calculates mean of supplied values after removing percentage of extreme values (post-sort)
func TrimmedMean[T Number](values []T, trimPercent float64) (mean T) {
	if trimPercent < 0 {
		trimPercent = 0
	}

	n := len(values)
	if n == 0 {
		return
	}

	nums := slices.Clone(values)
	slices.Sort(nums)

	// How many values to drop from each end
	trimCount := int(float64(n) * trimPercent)
	if trimCount*2 >= n {
		trimCount = (n - 1) / 2
	}

	kept := nums[trimCount : n-trimCount]

	var sum T
	for _, v := range kept {
		sum += v
	}

	mean = sum / T(len(kept))
	return
}

// Largest value, zero for empty input
func Peak[T Number](values []T) (peak T) {
	if len(values) == 0 {
		return
	}
	peak = slices.Max(values)
	return
}

// Percentage of part within whole, clamped to 0..100
func Percent(part, whole uint64) (pct float64) {
	if whole == 0 {
		pct = 100
		return
	}
	if part >= whole {
		pct = 100
		return
	}
	pct = float64(part) / float64(whole) * 100
	return
}
