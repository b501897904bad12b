package engine

import "math/rand"

// MaxGoals caps a single side's goal count.
const MaxGoals = 6

// GenerateScore turns a strength rating into a goal count in
// [0, MaxGoals] via a weighted trial process: six trials, each
// succeeding with the current chance; every success increments the
// goal count and decays the chance by 0.7. The first failed trial
// stops further accumulation. The decay is per success, not per
// failure, which skews the distribution toward 0-3 goals.
func GenerateScore(strength float64, rnd *rand.Rand) int {
	chance := strength / 100 * 2

	goals := 0
	missed := false
	for trial := 0; trial < MaxGoals; trial++ {
		if missed {
			continue
		}
		if rnd.Float64() < chance {
			goals++
			chance *= 0.7
		} else {
			missed = true
		}
	}
	return goals
}
