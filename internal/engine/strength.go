package engine

import (
	"math/rand"

	"github.com/fortuna/victoria/internal/store"
)

// Strength bounds and modifiers. The points-per-match adjustment
// rewards teams above the one-point-per-game baseline and punishes
// those below it.
const (
	BaseStrength  = 50.0
	MinStrength   = 20.0
	MaxStrength   = 80.0
	HomeAdvantage = 5.0
)

// Strength converts a team's cumulative record into a bounded
// synthetic rating in [MinStrength, MaxStrength]. A team with no
// matches played rates at base plus randomness only.
func Strength(t *store.Team, home bool, rnd *rand.Rand) float64 {
	strength := BaseStrength

	if t.MatchesPlayed > 0 {
		pointsPct := float64(t.Points) / float64(t.MatchesPlayed*3) * 100
		strength += (pointsPct - 33.33) * 0.5
	}

	if home {
		strength += HomeAdvantage
	}

	// Uniform noise in [-10, 10]
	strength += rnd.Float64()*20 - 10

	if strength < MinStrength {
		strength = MinStrength
	}
	if strength > MaxStrength {
		strength = MaxStrength
	}
	return strength
}
