package engine

import (
	"database/sql"
	"math/rand"
	"time"

	"github.com/fortuna/victoria/internal/store"
)

// Performance buckets a starter's match into a form adjustment tier
// from the result and goal margin.
type Performance int

const (
	Poor Performance = iota
	Average
	Good
	Excellent
)

// Experience and leveling constants. A player levels up each time
// accumulated experience reaches level*levelStep; the threshold is
// consumed so surplus carries over.
const (
	baseExperience = 10
	levelStep      = 100
)

var performanceExperience = map[Performance]int{
	Excellent: 15,
	Good:      10,
	Average:   5,
	Poor:      0,
}

var resultExperience = map[Result]int{
	Win:  5,
	Draw: 2,
	Loss: 0,
}

// PerformanceOf buckets a result and absolute goal margin. This is
// the single canonical rule replacing the divergent duplicates in the
// original system: a three-goal win is excellent, any other win good,
// a draw average, a loss poor.
func PerformanceOf(result Result, margin int) Performance {
	switch {
	case result == Win && margin >= 3:
		return Excellent
	case result == Win:
		return Good
	case result == Draw:
		return Average
	default:
		return Poor
	}
}

// UpdateStarter applies post-match condition changes to a player who
// was on the pitch: fitness cost (reduced by an active fitness
// coach), a performance-bucketed form swing, contract and experience
// bookkeeping with level-ups.
func UpdateStarter(p *store.Player, result Result, margin, coachLevel int, matchDate time.Time, rnd *rand.Rand) {
	drop := uniform(rnd, 5, 15)
	if coachLevel > 0 {
		drop *= 1 - 0.05*float64(coachLevel)
	}
	p.Fitness = clamp(p.Fitness-drop, 0, 100)

	perf := PerformanceOf(result, margin)
	var formDelta float64
	switch perf {
	case Excellent:
		formDelta = uniform(rnd, 0.3, 0.8)
	case Good:
		formDelta = uniform(rnd, 0.1, 0.5)
	case Average:
		formDelta = uniform(rnd, -0.2, 0.2)
	default:
		formDelta = uniform(rnd, -0.6, -0.1)
	}
	p.Form = clamp(p.Form+formDelta, 1, 10)

	p.MatchesPlayed++
	if p.ContractMatches > 0 {
		p.ContractMatches--
	}

	p.Experience += baseExperience + performanceExperience[perf] + resultExperience[result]
	for p.Experience >= p.Level*levelStep {
		p.Experience -= p.Level * levelStep
		p.Level++
	}

	p.LastPlayedAt = sql.NullTime{Time: matchDate, Valid: true}
}

// UpdateSubstitute applies post-match condition changes to a player
// who rested: fitness recovery scaled by days since their last match
// and a one-in-three chance of form rust.
func UpdateSubstitute(p *store.Player, now time.Time, rnd *rand.Rand) {
	days := 1
	if p.LastPlayedAt.Valid {
		days = int(now.Sub(p.LastPlayedAt.Time).Hours() / 24)
		if days < 0 {
			days = 0
		}
	}

	recovery := float64(3 + 2*days)
	if recovery > 10 {
		recovery = 10
	}
	p.Fitness = clamp(p.Fitness+recovery, 0, 100)

	if rnd.Intn(3) == 0 {
		p.Form = clamp(p.Form-0.1, 1, 10)
	}
}

func uniform(rnd *rand.Rand, lo, hi float64) float64 {
	return lo + rnd.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
