package utils

import "math"

// RoundTo rounds v half away from zero to the given number of decimals.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize maps v linearly from [lo, hi] onto [0, 1], clamping outside values.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}
