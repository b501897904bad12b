package engine

import (
	"sort"

	"github.com/fortuna/victoria/internal/store"
)

// StandingsRow is a computed league-table line for one team. It is a
// projection for sorting and display, never persisted.
type StandingsRow struct {
	Position       int    `json:"position"`
	TeamID         int    `json:"team_id"`
	TeamName       string `json:"team_name"`
	Managed        bool   `json:"managed"`
	MatchesPlayed  int    `json:"matches_played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

// Standings derives the sorted table for one division's teams. The
// tie-break chain is points, goal difference, goals for, then (top
// division only) manager-bound teams above engine teams, then team
// name ascending. Given unique names within a season the ordering is
// total: no two distinct teams ever compare equal.
func Standings(teams []*store.Team) []StandingsRow {
	rows := make([]StandingsRow, len(teams))
	for i, t := range teams {
		rows[i] = StandingsRow{
			TeamID:         t.TeamID,
			TeamName:       t.Name,
			Managed:        t.Managed(),
			MatchesPlayed:  t.MatchesPlayed,
			Wins:           t.Wins,
			Draws:          t.Draws,
			Losses:         t.Losses,
			GoalsFor:       t.GoalsFor,
			GoalsAgainst:   t.GoalsAgainst,
			GoalDifference: t.GoalsFor - t.GoalsAgainst,
			Points:         t.Points,
		}
	}

	topDivision := len(teams) > 0 && teams[0].Division == store.DivisionTop

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if topDivision && a.Managed != b.Managed {
			return a.Managed
		}
		return a.TeamName < b.TeamName
	})

	for i := range rows {
		rows[i].Position = i + 1
	}
	return rows
}
