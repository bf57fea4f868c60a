package rules

import "math"

// floorMod is the modulo with the sign of m, so floorMod(-30, 360) is 330.
func floorMod(a, m float64) float64 {
	r := a - m*math.Floor(a/m)
	if r >= m {
		// rounding of tiny negative a
		r -= m
	}
	return r
}

// ratioScore is 1 minus the share of failures, floored at 0.
func ratioScore(failures, total int) float64 {
	if total < 1 {
		total = 1
	}
	return math.Max(0, 1-float64(failures)/float64(total))
}

// shortID trims an edge id (usually a UUID) for messages.
func shortID(id string) string {
	r := []rune(id)
	if len(r) > 8 {
		return string(r[:8])
	}
	return id
}
