// Package engine implements the league's computational core:
// scheduling, match simulation, standings, rewards and roster
// condition propagation. Everything here is pure computation over the
// store models; persistence and transport live elsewhere. All
// randomness flows through an explicit *rand.Rand so callers can
// supply deterministic sequences.
package engine

// Result is a match outcome from one team's perspective.
type Result int

const (
	Loss Result = iota
	Draw
	Win
)

// String returns the lowercase result name.
func (r Result) String() string {
	switch r {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "loss"
	}
}

// ResultOf derives the outcome from a side's goals for and against.
func ResultOf(goalsFor, goalsAgainst int) Result {
	switch {
	case goalsFor > goalsAgainst:
		return Win
	case goalsFor < goalsAgainst:
		return Loss
	default:
		return Draw
	}
}

// PointsFor returns the league points a result earns.
func PointsFor(r Result) int {
	switch r {
	case Win:
		return 3
	case Draw:
		return 1
	default:
		return 0
	}
}
