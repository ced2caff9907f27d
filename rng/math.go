package rng

import "math"

// sqrtNeg2Ln computes sqrt(-2*ln(u)), the radius term of the
// trigonometric Box-Muller transform.
func sqrtNeg2Ln(u float64) float64 {
	return math.Sqrt(-2 * math.Log(u))
}
