package pipeline

import (
	"math/rand/v2"
)

// Default tempo bounds for a randomly chosen song tempo
const (
	DefaultTempoMin = 10
	DefaultTempoMax = 120
)

// ChooseTempo returns fixed when it is positive, otherwise a BPM drawn
// uniformly from [minBPM, maxBPM]
func ChooseTempo(fixed, minBPM, maxBPM int) int {
	if fixed > 0 {
		return fixed
	}
	if maxBPM < minBPM {
		minBPM, maxBPM = maxBPM, minBPM
	}
	return minBPM + rand.IntN(maxBPM-minBPM+1)
}
