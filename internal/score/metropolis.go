package score

import (
	"math"
	"math/rand"
)

// Metropolis accepts a move from old to new energy (kT) with probability
// min(1, exp(old-new)).
func Metropolis(r *rand.Rand, old, new float64) bool {
	if new <= old {
		return true
	}
	return r.Float64() < math.Exp(old-new)
}
