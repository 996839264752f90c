// Package median computes the median of vertex degrees, either from scratch
// (Of) or incrementally (Tracker), and renders it as a truncated decimal.
package median

import (
	"math"
	"sort"
	"strconv"
)

// Of returns the median of degrees. It sorts a copy and never mutates the
// input. An empty input yields 0.
func Of(degrees []int) float64 {
	n := len(degrees)
	if n == 0 {
		return 0
	}
	s := make([]int, n)
	copy(s, degrees)
	sort.Ints(s)
	return mid(s[n/2-1+n%2], s[n/2], n)
}

// mid combines the two middle ranks; for odd n both are the same element.
func mid(lo, hi, n int) float64 {
	if n%2 == 1 {
		return float64(hi)
	}
	return float64(lo+hi) / 2
}

// Truncate drops everything after the second decimal place (toward zero).
func Truncate(m float64) float64 {
	return math.Trunc(m*100) / 100
}

// Format renders m truncated to exactly two decimals, e.g. "1.50".
func Format(m float64) string {
	return strconv.FormatFloat(Truncate(m), 'f', 2, 64)
}
