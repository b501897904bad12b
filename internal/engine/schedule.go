package engine

import (
	"fmt"
	"sort"
	"time"
)

// Pairing is one scheduled meeting produced by the fixture scheduler.
type Pairing struct {
	Gameweek   int
	MatchDate  time.Time
	HomeTeamID int
	AwayTeamID int
}

// DoubleRoundRobin produces a full double round-robin schedule for an
// even number of teams using the circle method: team N-1 stays fixed
// while the rest rotate, giving N-1 gameweeks that cover every
// unordered pair once. The same pairing table is replayed with venues
// swapped for the second half, for 2(N-1) gameweeks and N(N-1)
// fixtures total. Gameweek g kicks off g-1 weeks after seasonStart.
func DoubleRoundRobin(teamIDs []int, seasonStart time.Time) ([]Pairing, error) {
	n := len(teamIDs)
	if n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("schedule requires an even team count of at least 2, got %d", n)
	}

	pairings := make([]Pairing, 0, n*(n-1))
	for round := 0; round < n-1; round++ {
		for i := 0; i < n/2; i++ {
			home := (round + i) % (n - 1)
			away := (n - 1 - i + round) % (n - 1)
			if i == 0 {
				// Position 0 always plays the fixed team.
				away = n - 1
			}

			firstHalf := round + 1
			secondHalf := firstHalf + n - 1
			pairings = append(pairings,
				Pairing{
					Gameweek:   firstHalf,
					MatchDate:  gameweekDate(seasonStart, firstHalf),
					HomeTeamID: teamIDs[home],
					AwayTeamID: teamIDs[away],
				},
				Pairing{
					Gameweek:   secondHalf,
					MatchDate:  gameweekDate(seasonStart, secondHalf),
					HomeTeamID: teamIDs[away],
					AwayTeamID: teamIDs[home],
				},
			)
		}
	}

	sort.SliceStable(pairings, func(i, j int) bool {
		return pairings[i].Gameweek < pairings[j].Gameweek
	})
	return pairings, nil
}

func gameweekDate(seasonStart time.Time, gameweek int) time.Time {
	return seasonStart.AddDate(0, 0, (gameweek-1)*7)
}
