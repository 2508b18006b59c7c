package utils

import "math/rand"

// RandomFloat returns a random float in [0.0, 1.0).
// Services take this as an injectable seam so tests can pin rolls.
func RandomFloat() float64 {
	return rand.Float64()
}

// RandomInt returns a random int in [min, max] inclusive.
func RandomInt(min, max int) int {
	if max <= min {
		return min
	}
	return min + rand.Intn(max-min+1)
}
