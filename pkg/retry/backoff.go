package retry

import (
	"math"
	"time"
)

// NextDelay estimates the delay the exponential policy will apply after
// the given attempt, for logging only.
func NextDelay(attempt int, initialInterval time.Duration, multiplier float64, maxInterval time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	// The first retry waits the initial interval; each later one scales it.
	duration := float64(initialInterval) * math.Pow(multiplier, float64(attempt-1))
	if duration > float64(maxInterval) {
		return maxInterval
	}
	return time.Duration(duration)
}
