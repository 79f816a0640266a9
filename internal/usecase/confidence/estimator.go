// Package confidence derives an answer confidence from retrieval distances.
package confidence

// Neutral is reported when nothing was retrieved.
const Neutral = 0.5

// Estimate returns 1 - mean(distances), or Neutral for no distances.
func Estimate(distances []float64) float64 {
	if len(distances) == 0 {
		return Neutral
	}
	var sum float64
	for _, d := range distances {
		sum += d
	}
	return 1 - sum/float64(len(distances))
}

// Clamp caps v at 1.0. Values below zero pass through unchanged.
func Clamp(v float64) float64 {
	return min(v, 1.0)
}
