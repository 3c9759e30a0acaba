// Package growth decides how far a mapped file grows when a write no longer fits.
//
// Capacity grows geometrically so a stream of small appends triggers only a
// logarithmic number of remaps.
package growth

import "math"

// DefaultFactor is the multiplier applied to the current capacity on grow.
const DefaultFactor = 2

// PageAlign rounds n up to the next multiple of page.
// It returns math.MaxInt64 rounded down to a page when n would overflow.
func PageAlign(n, page int64) int64 {
	if page <= 0 {
		panic("growth: page size must be positive")
	}
	if n <= 0 {
		return 0
	}
	if n > math.MaxInt64-page+1 {
		return math.MaxInt64 - math.MaxInt64%page
	}
	return (n + page - 1) / page * page
}

// Next returns the capacity to grow to so that minRequired bytes fit.
//
// The result is page aligned, at least minRequired, at least cur*factor and
// at least one page. Factors below DefaultFactor are raised to it.
func Next(cur, minRequired, page int64, factor int) int64 {
	if factor < DefaultFactor {
		factor = DefaultFactor
	}
	target := minRequired
	if cur > 0 {
		scaled := cur
		if cur <= math.MaxInt64/int64(factor) {
			scaled = cur * int64(factor)
		} else {
			scaled = math.MaxInt64
		}
		if scaled > target {
			target = scaled
		}
	}
	if target < page {
		target = page
	}
	return PageAlign(target, page)
}
