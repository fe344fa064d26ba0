package util

import "math"

// Round2 rounds to 2 decimal places. Reported monetary and percentage values
// are rounded only at the return boundary, never mid-aggregation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
