package engine

import (
	"database/sql"
	"testing"

	"github.com/fortuna/victoria/internal/store"
)

func TestStandingsOrdering(t *testing.T) {
	teams := []*store.Team{
		{TeamID: 1, Division: store.DivisionTop, Name: "Saturn Rovers", Wins: 2, Points: 6, GoalsFor: 4, GoalsAgainst: 2},
		{TeamID: 2, Division: store.DivisionTop, Name: "Meteor City", Wins: 3, Points: 9, GoalsFor: 7, GoalsAgainst: 1},
		{TeamID: 3, Division: store.DivisionTop, Name: "Nebula FC", Wins: 2, Points: 6, GoalsFor: 5, GoalsAgainst: 3},
		{TeamID: 4, Division: store.DivisionTop, Name: "Pulsar Athletic", Draws: 1, Points: 1, GoalsFor: 1, GoalsAgainst: 4},
	}

	rows := Standings(teams)

	wantOrder := []int{2, 3, 1, 4}
	for i, want := range wantOrder {
		if rows[i].TeamID != want {
			t.Fatalf("position %d: team %d, want %d", i+1, rows[i].TeamID, want)
		}
		if rows[i].Position != i+1 {
			t.Fatalf("row %d has position %d", i, rows[i].Position)
		}
	}
}

func TestStandingsGoalsForBreaksGoalDifferenceTie(t *testing.T) {
	teams := []*store.Team{
		{TeamID: 1, Division: store.DivisionTop, Name: "Quasar City", Points: 6, GoalsFor: 2, GoalsAgainst: 0},
		{TeamID: 2, Division: store.DivisionTop, Name: "Astral Rovers", Points: 6, GoalsFor: 5, GoalsAgainst: 3},
	}

	rows := Standings(teams)
	if rows[0].TeamID != 2 {
		t.Fatalf("team with more goals scored should rank first on equal points and goal difference, got team %d", rows[0].TeamID)
	}
}

func TestStandingsManagedTeamWinsTieInTopDivision(t *testing.T) {
	managed := sql.NullInt32{Int32: 7, Valid: true}
	teams := []*store.Team{
		{TeamID: 1, Division: store.DivisionTop, Name: "Aaa United", Points: 6, GoalsFor: 3, GoalsAgainst: 1},
		{TeamID: 2, Division: store.DivisionTop, Name: "Zzz United", ManagerID: managed, Points: 6, GoalsFor: 3, GoalsAgainst: 1},
	}

	rows := Standings(teams)
	if rows[0].TeamID != 2 {
		t.Fatalf("managed team should rank above engine team on a full tie, got team %d first", rows[0].TeamID)
	}
}

func TestStandingsNameBreaksFullTie(t *testing.T) {
	teams := []*store.Team{
		{TeamID: 1, Division: store.DivisionSecond, Name: "Vortex Athletic", Points: 3, GoalsFor: 2, GoalsAgainst: 2},
		{TeamID: 2, Division: store.DivisionSecond, Name: "Comet Chasers", Points: 3, GoalsFor: 2, GoalsAgainst: 2},
	}

	rows := Standings(teams)
	if rows[0].TeamID != 2 {
		t.Fatalf("alphabetical order should break the tie, got %q first", rows[0].TeamName)
	}
}

func TestStandingsIsTotalOrder(t *testing.T) {
	// Shuffled input must land in the same order as sorted input.
	teams := []*store.Team{
		{TeamID: 1, Division: store.DivisionTop, Name: "Orion Warriors", Points: 4, GoalsFor: 5, GoalsAgainst: 5},
		{TeamID: 2, Division: store.DivisionTop, Name: "Zenith United", Points: 4, GoalsFor: 5, GoalsAgainst: 5},
		{TeamID: 3, Division: store.DivisionTop, Name: "Eclipse United", Points: 4, GoalsFor: 5, GoalsAgainst: 5},
	}
	reversed := []*store.Team{teams[2], teams[1], teams[0]}

	a := Standings(teams)
	b := Standings(reversed)
	for i := range a {
		if a[i].TeamID != b[i].TeamID {
			t.Fatalf("ordering depends on input order at position %d: %d vs %d", i+1, a[i].TeamID, b[i].TeamID)
		}
	}
}
