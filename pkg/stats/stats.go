// Package stats provides statistical utility functions for analyzers.
package stats

import "gonum.org/v1/gonum/stat"

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// StdDev returns the sample standard deviation of xs. Slices with fewer
// than 2 values have no meaningful spread and return 0.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return stat.StdDev(xs, nil)
}

// Percentile calculates the p-th percentile of a sorted slice.
// The slice must already be sorted in ascending order.
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
