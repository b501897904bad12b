package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/fortuna/victoria/internal/engine"
	"github.com/fortuna/victoria/internal/store"
	"github.com/fortuna/victoria/internal/store/memory"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

func newTestLeagueService(st store.Store) *LeagueService {
	svc := NewLeagueService(st, nil, nil, nil)
	svc.randFn = func() *rand.Rand { return rand.New(rand.NewSource(42)) }
	svc.clock = fixedClock
	return svc
}

func TestInitializeLeagueSeedsFullSeason(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	result, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}
	if !result.Created {
		t.Fatal("expected a fresh season to be created")
	}
	if result.TeamName != "ada FC" {
		t.Fatalf("team name = %q, want %q", result.TeamName, "ada FC")
	}
	if result.SeasonCode != "2026/01" {
		t.Fatalf("season code = %q, want %q", result.SeasonCode, "2026/01")
	}

	top, err := st.Teams().ListBySeasonDivision(ctx, result.SeasonCode, store.DivisionTop)
	if err != nil {
		t.Fatalf("listing top division: %v", err)
	}
	if len(top) != topDivisionSize {
		t.Fatalf("top division size = %d, want %d", len(top), topDivisionSize)
	}

	second, err := st.Teams().ListBySeasonDivision(ctx, result.SeasonCode, store.DivisionSecond)
	if err != nil {
		t.Fatalf("listing second division: %v", err)
	}
	if len(second) != secondDivisionSize {
		t.Fatalf("second division size = %d, want %d", len(second), secondDivisionSize)
	}

	var managedCount int
	for _, team := range append(top, second...) {
		if team.Managed() {
			managedCount++
		}
		roster, err := st.Players().ListByTeam(ctx, team.TeamID)
		if err != nil {
			t.Fatalf("listing roster for team %d: %v", team.TeamID, err)
		}
		if len(roster) != engine.RosterSize {
			t.Fatalf("team %d roster size = %d, want %d", team.TeamID, len(roster), engine.RosterSize)
		}
	}
	if managedCount != 1 {
		t.Fatalf("managed team count = %d, want 1", managedCount)
	}

	fixtures, err := st.Fixtures().CountBySeason(ctx, result.SeasonCode)
	if err != nil {
		t.Fatalf("counting fixtures: %v", err)
	}
	if want := topDivisionSize * (topDivisionSize - 1); fixtures != want {
		t.Fatalf("fixture count = %d, want %d", fixtures, want)
	}
}

func TestInitializeLeagueIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	first, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("first InitializeLeague: %v", err)
	}

	second, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("second InitializeLeague: %v", err)
	}
	if second.Created {
		t.Fatal("second call must not create anything")
	}
	if second.SeasonCode != first.SeasonCode || second.TeamName != first.TeamName {
		t.Fatalf("second call reported %+v, want %+v", second, first)
	}

	count, err := st.Fixtures().CountBySeason(ctx, first.SeasonCode)
	if err != nil {
		t.Fatalf("counting fixtures: %v", err)
	}
	if want := topDivisionSize * (topDivisionSize - 1); count != want {
		t.Fatalf("fixture count after repeat = %d, want %d", count, want)
	}
}

func TestInitializeLeagueRejectsEmptyHandle(t *testing.T) {
	svc := newTestLeagueService(memory.New())
	if _, err := svc.InitializeLeague(context.Background(), ""); !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("error = %v, want ErrInvalidState", err)
	}
}

func TestSimulateGameweekResolvesWholeGameweek(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	init, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	fixtures, err := st.Fixtures().ListByGameweek(ctx, init.SeasonCode, 1)
	if err != nil {
		t.Fatalf("listing gameweek 1: %v", err)
	}
	if len(fixtures) != topDivisionSize/2 {
		t.Fatalf("gameweek 1 has %d fixtures, want %d", len(fixtures), topDivisionSize/2)
	}

	result, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada")
	if err != nil {
		t.Fatalf("SimulateGameweek: %v", err)
	}
	if result.MatchesSimulated != topDivisionSize/2 {
		t.Fatalf("matches simulated = %d, want %d", result.MatchesSimulated, topDivisionSize/2)
	}
	if len(result.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", result.Failures)
	}
	if result.UserMatch == nil {
		t.Fatal("user match missing from gameweek result")
	}
	if result.RewardBreakdown == nil || result.RewardBreakdown.Total <= 0 {
		t.Fatalf("reward breakdown = %+v, want positive total", result.RewardBreakdown)
	}
	if result.StandingsPosition < 1 || result.StandingsPosition > topDivisionSize {
		t.Fatalf("standings position = %d, want 1..%d", result.StandingsPosition, topDivisionSize)
	}

	for _, f := range fixtures {
		resolved, err := st.Fixtures().GetByExternalID(ctx, f.ExternalID)
		if err != nil {
			t.Fatalf("fetching fixture %s: %v", f.ExternalID, err)
		}
		if resolved.Status != store.FixtureCompleted {
			t.Fatalf("fixture %s status = %q, want completed", f.ExternalID, resolved.Status)
		}
		if !resolved.HomeScore.Valid || !resolved.AwayScore.Valid {
			t.Fatalf("fixture %s missing scores", f.ExternalID)
		}
	}
}

func TestSimulateGameweekMaintainsPointsInvariant(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	init, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	for gameweek := 1; gameweek <= 3; gameweek++ {
		fixtures, err := st.Fixtures().ListByGameweek(ctx, init.SeasonCode, gameweek)
		if err != nil {
			t.Fatalf("listing gameweek %d: %v", gameweek, err)
		}
		if _, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada"); err != nil {
			t.Fatalf("simulating gameweek %d: %v", gameweek, err)
		}
	}

	teams, err := st.Teams().ListBySeasonDivision(ctx, init.SeasonCode, store.DivisionTop)
	if err != nil {
		t.Fatalf("listing top division: %v", err)
	}
	for _, team := range teams {
		if team.MatchesPlayed != 3 {
			t.Errorf("team %d played %d matches, want 3", team.TeamID, team.MatchesPlayed)
		}
		if team.Points != team.Wins*3+team.Draws {
			t.Errorf("team %d points %d != wins*3+draws (%d, %d)",
				team.TeamID, team.Points, team.Wins, team.Draws)
		}
		if team.Wins+team.Draws+team.Losses != team.MatchesPlayed {
			t.Errorf("team %d result counts do not sum to matches played", team.TeamID)
		}
	}
}

func TestSimulateGameweekSkipsCompletedFixtures(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	init, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	fixtures, err := st.Fixtures().ListByGameweek(ctx, init.SeasonCode, 1)
	if err != nil {
		t.Fatalf("listing gameweek 1: %v", err)
	}

	if _, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada"); err != nil {
		t.Fatalf("first simulation: %v", err)
	}

	repeat, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada")
	if err != nil {
		t.Fatalf("repeat simulation: %v", err)
	}
	if repeat.MatchesSimulated != 0 {
		t.Fatalf("repeat simulated %d matches, want 0", repeat.MatchesSimulated)
	}

	scores := make(map[string][2]int32)
	for _, f := range fixtures {
		resolved, err := st.Fixtures().GetByExternalID(ctx, f.ExternalID)
		if err != nil {
			t.Fatalf("fetching fixture: %v", err)
		}
		scores[f.ExternalID] = [2]int32{resolved.HomeScore.Int32, resolved.AwayScore.Int32}
	}

	// A third run with a different seed must not rewrite anything.
	svc.randFn = func() *rand.Rand { return rand.New(rand.NewSource(99)) }
	if _, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada"); err != nil {
		t.Fatalf("third simulation: %v", err)
	}
	for _, f := range fixtures {
		resolved, err := st.Fixtures().GetByExternalID(ctx, f.ExternalID)
		if err != nil {
			t.Fatalf("fetching fixture: %v", err)
		}
		if got := [2]int32{resolved.HomeScore.Int32, resolved.AwayScore.Int32}; got != scores[f.ExternalID] {
			t.Fatalf("fixture %s score rewritten: %v -> %v", f.ExternalID, scores[f.ExternalID], got)
		}
	}
}

func TestSimulateGameweekSettlesManagedSide(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	init, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	before, err := st.Managers().GetByHandle(ctx, "ada")
	if err != nil {
		t.Fatalf("fetching manager: %v", err)
	}

	fixtures, err := st.Fixtures().ListByGameweek(ctx, init.SeasonCode, 1)
	if err != nil {
		t.Fatalf("listing gameweek 1: %v", err)
	}
	if _, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada"); err != nil {
		t.Fatalf("SimulateGameweek: %v", err)
	}

	after, err := st.Managers().GetByHandle(ctx, "ada")
	if err != nil {
		t.Fatalf("fetching manager: %v", err)
	}
	if after.Budget <= before.Budget {
		t.Fatalf("budget did not grow: %d -> %d", before.Budget, after.Budget)
	}
	if after.MatchesPlayed != before.MatchesPlayed+1 {
		t.Fatalf("manager matches played = %d, want %d", after.MatchesPlayed, before.MatchesPlayed+1)
	}
	if after.FanCount < engine.FanFloor {
		t.Fatalf("fan count %d below floor", after.FanCount)
	}

	team, err := st.Teams().GetByManager(ctx, after.ManagerID, init.SeasonCode)
	if err != nil {
		t.Fatalf("fetching team: %v", err)
	}
	roster, err := st.Players().ListByTeam(ctx, team.TeamID)
	if err != nil {
		t.Fatalf("listing roster: %v", err)
	}
	for _, p := range roster {
		if p.Starter {
			if p.MatchesPlayed != 1 {
				t.Errorf("starter %d matches played = %d, want 1", p.PlayerID, p.MatchesPlayed)
			}
			if !p.LastPlayedAt.Valid {
				t.Errorf("starter %d missing last played timestamp", p.PlayerID)
			}
		} else if p.MatchesPlayed != 0 {
			t.Errorf("substitute %d matches played = %d, want 0", p.PlayerID, p.MatchesPlayed)
		}
	}
}

func TestSimulateGameweekTriggersNationCallOnEighthMatch(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	init, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	for gameweek := 1; gameweek <= engine.NationCallInterval; gameweek++ {
		fixtures, err := st.Fixtures().ListByGameweek(ctx, init.SeasonCode, gameweek)
		if err != nil {
			t.Fatalf("listing gameweek %d: %v", gameweek, err)
		}
		result, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada")
		if err != nil {
			t.Fatalf("simulating gameweek %d: %v", gameweek, err)
		}

		if gameweek < engine.NationCallInterval && result.NationCall != nil {
			t.Fatalf("nation call fired early at gameweek %d", gameweek)
		}
	}

	manager, err := st.Managers().GetByHandle(ctx, "ada")
	if err != nil {
		t.Fatalf("fetching manager: %v", err)
	}
	calls, err := st.NationCalls().ListByManager(ctx, manager.ManagerID, 10)
	if err != nil {
		t.Fatalf("listing nation calls: %v", err)
	}
	if len(calls) > 1 {
		t.Fatalf("nation call count = %d, want at most 1 after %d matches", len(calls), engine.NationCallInterval)
	}
}

func TestGetStandingsUnknownSeason(t *testing.T) {
	svc := newTestLeagueService(memory.New())
	if _, err := svc.GetStandings(context.Background(), "2099/01", store.DivisionTop); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestGetUpcomingMatchesEnrichesNames(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	if _, err := svc.InitializeLeague(ctx, "ada"); err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	matches, err := svc.GetUpcomingMatches(ctx, "ada", "", 5)
	if err != nil {
		t.Fatalf("GetUpcomingMatches: %v", err)
	}
	if len(matches) != 5 {
		t.Fatalf("upcoming count = %d, want 5", len(matches))
	}
	for i, m := range matches {
		if m.HomeTeam == "" || m.AwayTeam == "" {
			t.Fatalf("match %d missing team names: %+v", i, m)
		}
		if m.HomeTeam != "ada FC" && m.AwayTeam != "ada FC" {
			t.Fatalf("match %d does not involve the manager's team: %+v", i, m)
		}
		if i > 0 && m.Gameweek < matches[i-1].Gameweek {
			t.Fatalf("upcoming matches out of order at %d", i)
		}
	}
}

func TestGetManagerProfile(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	init, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	profile, err := svc.GetManagerProfile(ctx, "ada")
	if err != nil {
		t.Fatalf("GetManagerProfile: %v", err)
	}
	if profile.Budget != defaultBudget {
		t.Errorf("budget = %d, want %d", profile.Budget, defaultBudget)
	}
	if profile.FanCount != defaultFanCount {
		t.Errorf("fan count = %d, want %d", profile.FanCount, defaultFanCount)
	}
	if profile.SeasonCode != init.SeasonCode {
		t.Errorf("season = %q, want %q", profile.SeasonCode, init.SeasonCode)
	}
	if profile.TeamName != "ada FC" || profile.Division != store.DivisionTop {
		t.Errorf("placement = %q division %d, want ada FC in division %d",
			profile.TeamName, profile.Division, store.DivisionTop)
	}
}

func TestGetUserMatchesOnlyCompleted(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	svc := newTestLeagueService(st)

	init, err := svc.InitializeLeague(ctx, "ada")
	if err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	matches, err := svc.GetUserMatches(ctx, "ada", "")
	if err != nil {
		t.Fatalf("GetUserMatches before play: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("completed matches before play = %d, want 0", len(matches))
	}

	fixtures, err := st.Fixtures().ListByGameweek(ctx, init.SeasonCode, 1)
	if err != nil {
		t.Fatalf("listing gameweek 1: %v", err)
	}
	if _, err := svc.SimulateGameweek(ctx, fixtures[0].ExternalID, "ada"); err != nil {
		t.Fatalf("SimulateGameweek: %v", err)
	}

	matches, err = svc.GetUserMatches(ctx, "ada", "")
	if err != nil {
		t.Fatalf("GetUserMatches after play: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("completed matches after one gameweek = %d, want 1", len(matches))
	}
}
