package random

import (
	"math"
	"math/rand"
	"time"
)

// Randomize applies ±percent randomization to value
// Example: Randomize(100, 1.0) returns value in range [99, 101]
func Randomize(value float64, percent float64) float64 {
	if percent <= 0 {
		return value
	}

	// Calculate variance
	variance := value * (percent / 100.0)

	// Generate random offset in range [-variance, +variance]
	offset := (rand.Float64()*2 - 1) * variance

	return value + offset
}

// Jitter spreads d by ±percent so retries from several runs do not line up
func Jitter(d time.Duration, percent float64) time.Duration {
	if d <= 0 {
		return d
	}
	return time.Duration(math.Round(Randomize(float64(d), percent)))
}
