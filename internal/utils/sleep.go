package utils

import (
	"math"
	"math/rand"
	"time"
)

// sampleGamma returns a sample from the Gamma(shape, scale) distribution using
// the Marsaglia-Tsang squeeze method. shape must be >= 1.
func sampleGamma(shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rand.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		x2 := x * x
		u := rand.Float64()
		// Fast accept path
		if u < 1.0-0.0331*(x2*x2) {
			return d * v * scale
		}
		// Slow accept path
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// Sleep pauses for a duration drawn from a Gamma(4, 0.25) distribution centred
// on the requested millisecond value (mean multiplier = 1.0). Menu latency in
// the game is itself noisy, so a right-skewed jitter keeps input pacing from
// looking machine-regular. The multiplier is clamped to [0.4, 2.5].
func Sleep(milliseconds int) {
	const shape = 4.0
	const scale = 0.25 // mean = shape*scale = 1.0
	multiplier := sampleGamma(shape, scale)
	if multiplier < 0.4 {
		multiplier = 0.4
	}
	if multiplier > 2.5 {
		multiplier = 2.5
	}
	sleepMs := int(float64(milliseconds) * multiplier)
	time.Sleep(time.Duration(sleepMs) * time.Millisecond)
}
