// Package service composes the storage port, engine and delivery
// side-channels (cache, stream publisher, live broadcast) into the
// operations the surrounding application calls.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/fortuna/victoria/internal/engine"
	"github.com/fortuna/victoria/internal/store"
)

// League shape and new-manager defaults.
const (
	topDivisionSize    = 20
	secondDivisionSize = 23

	defaultBudget          = 20000000
	defaultFanCount        = 5000
	defaultStadiumCapacity = 10000
	defaultStadiumLevel    = 1
)

// Contention retry policy: bounded exponential backoff, then surface.
const (
	contentionAttempts = 3
	contentionDelay    = 100 * time.Millisecond
)

// LeagueService handles league lifecycle and match simulation.
type LeagueService struct {
	store       store.Store
	cache       StandingsCache
	publisher   EventPublisher
	broadcaster Broadcaster

	randFn func() *rand.Rand
	clock  func() time.Time
}

// NewLeagueService creates a league service. Cache, publisher and
// broadcaster may be nil; the corresponding side-channel is skipped.
func NewLeagueService(st store.Store, cache StandingsCache, pub EventPublisher, bc Broadcaster) *LeagueService {
	return &LeagueService{
		store:       st,
		cache:       cache,
		publisher:   pub,
		broadcaster: bc,
		randFn: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		clock: time.Now,
	}
}

// InitResult reports what InitializeLeague found or created.
type InitResult struct {
	SeasonCode string `json:"season_code"`
	TeamName   string `json:"team_name"`
	Created    bool   `json:"created"`
}

// InitializeLeague is idempotent: it creates the current season's
// teams, rosters and fixtures for a manager if none exist yet, and
// reports the existing state otherwise.
func (s *LeagueService) InitializeLeague(ctx context.Context, handle string) (*InitResult, error) {
	if handle == "" {
		return nil, fmt.Errorf("manager handle required: %w", store.ErrInvalidState)
	}

	var result *InitResult
	err := store.Backoff(ctx, contentionAttempts, contentionDelay, func() error {
		return s.store.Atomic(ctx, func(tx store.Store) error {
			manager, err := tx.Managers().GetByHandle(ctx, handle)
			if errors.Is(err, store.ErrNotFound) {
				manager = &store.Manager{
					Handle:          handle,
					Budget:          defaultBudget,
					FanCount:        defaultFanCount,
					StadiumCapacity: defaultStadiumCapacity,
					StadiumLevel:    defaultStadiumLevel,
				}
				if err := tx.Managers().Create(ctx, manager); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			season, err := tx.Seasons().GetActive(ctx)
			if errors.Is(err, store.ErrNotFound) {
				season = &store.Season{
					Code:      seasonCode(s.clock().Year(), 1),
					Year:      s.clock().Year(),
					Sequence:  1,
					StartDate: s.clock(),
					IsActive:  true,
				}
				if err := tx.Seasons().Create(ctx, season); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}

			// Already holding a team this season: nothing to do.
			if team, err := tx.Teams().GetByManager(ctx, manager.ManagerID, season.Code); err == nil {
				result = &InitResult{SeasonCode: season.Code, TeamName: team.Name, Created: false}
				return nil
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			// One interactive slot per league; a season seeded for a
			// different manager is not joinable.
			if count, err := tx.Teams().CountBySeason(ctx, season.Code); err != nil {
				return err
			} else if count > 0 {
				return fmt.Errorf("season %s already initialized: %w", season.Code, store.ErrInvalidState)
			}

			rnd := s.randFn()
			teamName := fmt.Sprintf("%s FC", handle)
			if err := s.seedSeason(ctx, tx, season, manager, teamName, rnd); err != nil {
				return err
			}

			result = &InitResult{SeasonCode: season.Code, TeamName: teamName, Created: true}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("initializing league for %q: %w", handle, err)
	}
	return result, nil
}

// seedSeason creates both divisions' teams with rosters and the top
// division's fixture schedule.
func (s *LeagueService) seedSeason(ctx context.Context, tx store.Store, season *store.Season, manager *store.Manager, teamName string, rnd *rand.Rand) error {
	names := botNames(teamName)

	userTeam := &store.Team{
		SeasonCode: season.Code,
		Division:   store.DivisionTop,
		Name:       teamName,
		ManagerID:  managerRef(manager.ManagerID),
	}
	if err := tx.Teams().Create(ctx, userTeam); err != nil {
		return err
	}
	if err := createRoster(ctx, tx, userTeam.TeamID, rnd); err != nil {
		return err
	}

	topIDs := []int{userTeam.TeamID}
	for i := 0; i < topDivisionSize-1; i++ {
		team := &store.Team{
			SeasonCode: season.Code,
			Division:   store.DivisionTop,
			Name:       names[i],
		}
		if err := tx.Teams().Create(ctx, team); err != nil {
			return err
		}
		if err := createRoster(ctx, tx, team.TeamID, rnd); err != nil {
			return err
		}
		topIDs = append(topIDs, team.TeamID)
	}

	for i := 0; i < secondDivisionSize; i++ {
		team := &store.Team{
			SeasonCode: season.Code,
			Division:   store.DivisionSecond,
			Name:       names[topDivisionSize-1+i],
		}
		if err := tx.Teams().Create(ctx, team); err != nil {
			return err
		}
		if err := createRoster(ctx, tx, team.TeamID, rnd); err != nil {
			return err
		}
	}

	return scheduleFixtures(ctx, tx, season, topIDs)
}

// SimulateGameweek resolves every still-scheduled fixture in the
// gameweek containing the referenced fixture. One fixture's failure
// never blocks the rest; failures are reported alongside the count.
func (s *LeagueService) SimulateGameweek(ctx context.Context, fixtureExternalID, handle string) (*GameweekResult, error) {
	manager, err := s.store.Managers().GetByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("fetching manager: %w", err)
	}

	anchor, err := s.store.Fixtures().GetByExternalID(ctx, fixtureExternalID)
	if err != nil {
		return nil, fmt.Errorf("fetching fixture: %w", err)
	}

	fixtures, err := s.store.Fixtures().ListByGameweek(ctx, anchor.SeasonCode, anchor.Gameweek)
	if err != nil {
		return nil, fmt.Errorf("fetching gameweek fixtures: %w", err)
	}

	userTeam, err := s.store.Teams().GetByManager(ctx, manager.ManagerID, anchor.SeasonCode)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("fetching manager team: %w", err)
	}

	result := &GameweekResult{SeasonCode: anchor.SeasonCode, Gameweek: anchor.Gameweek}
	var summaries []*MatchSummary

	for _, fixture := range fixtures {
		if fixture.Status != store.FixtureScheduled {
			continue
		}

		summary, nationCall, err := s.resolveFixture(ctx, fixture)
		if err != nil {
			log.Printf("fixture %s not resolved: %v", fixture.ExternalID, err)
			result.Failures = append(result.Failures, FixtureFailure{
				FixtureID: fixture.ExternalID,
				Reason:    err.Error(),
			})
			continue
		}

		result.MatchesSimulated++
		summaries = append(summaries, summary)

		if userTeam != nil && (fixture.HomeTeamID == userTeam.TeamID || fixture.AwayTeamID == userTeam.TeamID) {
			result.UserMatch = summary
			result.RewardBreakdown = summary.Reward
			result.NationCall = nationCall
		}
	}

	if s.cache != nil && result.MatchesSimulated > 0 {
		s.cache.InvalidateSeason(ctx, anchor.SeasonCode)
	}

	if userTeam != nil {
		rows, err := s.GetStandings(ctx, anchor.SeasonCode, userTeam.Division)
		if err == nil {
			for _, row := range rows {
				if row.TeamID == userTeam.TeamID {
					result.StandingsPosition = row.Position
					break
				}
			}
		}
	}

	for _, summary := range summaries {
		if s.publisher != nil {
			if err := s.publisher.PublishMatchResolved(ctx, summary); err != nil {
				log.Printf("publishing match %s: %v", summary.FixtureID, err)
			}
		}
		if s.broadcaster != nil {
			s.broadcaster.BroadcastMatch(summary)
		}
	}

	return result, nil
}

// resolveFixture simulates one fixture as a single unit of work:
// scores, fixture completion, both teams' cumulative stats, and for a
// managed side the reward, roster condition and nation-call steps.
func (s *LeagueService) resolveFixture(ctx context.Context, fixture *store.Fixture) (*MatchSummary, *NationCallResult, error) {
	var summary *MatchSummary
	var nationCall *NationCallResult

	err := store.Backoff(ctx, contentionAttempts, contentionDelay, func() error {
		return s.store.Atomic(ctx, func(tx store.Store) error {
			f, err := tx.Fixtures().GetByExternalID(ctx, fixture.ExternalID)
			if err != nil {
				return err
			}
			if f.Status != store.FixtureScheduled {
				return fmt.Errorf("fixture %s already %s: %w", f.ExternalID, f.Status, store.ErrInvalidState)
			}

			home, err := tx.Teams().GetByID(ctx, f.HomeTeamID)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("fixture %s references missing home team %d: %w", f.ExternalID, f.HomeTeamID, store.ErrIntegrity)
			} else if err != nil {
				return err
			}
			away, err := tx.Teams().GetByID(ctx, f.AwayTeamID)
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("fixture %s references missing away team %d: %w", f.ExternalID, f.AwayTeamID, store.ErrIntegrity)
			} else if err != nil {
				return err
			}

			rnd := s.randFn()
			homeScore := engine.GenerateScore(engine.Strength(home, true, rnd), rnd)
			awayScore := engine.GenerateScore(engine.Strength(away, false, rnd), rnd)

			if err := tx.Fixtures().Complete(ctx, f.FixtureID, homeScore, awayScore); err != nil {
				return err
			}

			applyTeamResult(home, homeScore, awayScore)
			applyTeamResult(away, awayScore, homeScore)
			if err := tx.Teams().UpdateStats(ctx, home); err != nil {
				return err
			}
			if err := tx.Teams().UpdateStats(ctx, away); err != nil {
				return err
			}

			summary = &MatchSummary{
				FixtureID:  f.ExternalID,
				SeasonCode: f.SeasonCode,
				Gameweek:   f.Gameweek,
				MatchDate:  f.MatchDate,
				HomeTeam:   home.Name,
				AwayTeam:   away.Name,
				HomeScore:  homeScore,
				AwayScore:  awayScore,
			}
			nationCall = nil

			sides := []struct {
				team         *store.Team
				goalsFor     int
				goalsAgainst int
				home         bool
			}{
				{home, homeScore, awayScore, true},
				{away, awayScore, homeScore, false},
			}
			for _, side := range sides {
				if !side.team.Managed() {
					continue
				}
				reward, call, err := s.settleManagedSide(ctx, tx, side.team, side.goalsFor, side.goalsAgainst, side.home, f.MatchDate, rnd)
				if err != nil {
					return err
				}
				summary.Reward = reward
				nationCall = call
			}
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return summary, nationCall, nil
}

// settleManagedSide applies the manager-facing consequences of a
// resolved match: reward payout, fan swing, roster condition updates
// and the every-8th-match nation-call check. The manager row is
// locked first so concurrent fixtures touching the same manager
// serialize instead of losing updates.
func (s *LeagueService) settleManagedSide(ctx context.Context, tx store.Store, team *store.Team, goalsFor, goalsAgainst int, isHome bool, matchDate time.Time, rnd *rand.Rand) (*engine.Reward, *NationCallResult, error) {
	manager, err := tx.Managers().Lock(ctx, int(team.ManagerID.Int32))
	if err != nil {
		return nil, nil, err
	}

	result := engine.ResultOf(goalsFor, goalsAgainst)
	reward := engine.MatchRewards(result, goalsFor, isHome, manager)
	manager.Budget += reward.Total
	manager.FanCount = engine.ApplyFanDelta(manager.FanCount, engine.FanDelta(result, goalsFor, goalsAgainst, rnd))
	manager.MatchesPlayed++

	roster, err := tx.Players().ListByTeam(ctx, team.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if len(roster) == 0 {
		return nil, nil, fmt.Errorf("team %d has no roster: %w", team.TeamID, store.ErrIntegrity)
	}

	margin := goalsFor - goalsAgainst
	if margin < 0 {
		margin = -margin
	}
	for _, p := range roster {
		if p.Starter {
			engine.UpdateStarter(p, result, margin, manager.FitnessCoachLevel, matchDate, rnd)
		} else {
			engine.UpdateSubstitute(p, matchDate, rnd)
		}
		if err := tx.Players().Update(ctx, p); err != nil {
			return nil, nil, err
		}
	}

	var nationCall *NationCallResult
	if engine.DueForNationCall(manager.MatchesPlayed) {
		selections, total := engine.SelectNationSquad(roster, rnd)
		if len(selections) > 0 {
			manager.Budget += total
			record, err := recordNationCall(ctx, tx, manager.ManagerID, team.SeasonCode, selections, total)
			if err != nil {
				return nil, nil, err
			}
			nationCall = &NationCallResult{Selections: selections, TotalPayout: total}
			if s.publisher != nil {
				if err := s.publisher.PublishNationCall(ctx, record); err != nil {
					log.Printf("publishing nation call for manager %d: %v", manager.ManagerID, err)
				}
			}
		}
	}

	if err := tx.Managers().Update(ctx, manager); err != nil {
		return nil, nil, err
	}
	return &reward, nationCall, nil
}

// GetStandings returns the ordered table for a season and division,
// read through the cache when one is configured.
func (s *LeagueService) GetStandings(ctx context.Context, seasonCode string, division int) ([]engine.StandingsRow, error) {
	if s.cache != nil {
		if rows, ok := s.cache.GetStandings(ctx, seasonCode, division); ok {
			return rows, nil
		}
	}

	teams, err := s.store.Teams().ListBySeasonDivision(ctx, seasonCode, division)
	if err != nil {
		return nil, fmt.Errorf("fetching teams: %w", err)
	}
	if len(teams) == 0 {
		return nil, fmt.Errorf("no teams in season %s division %d: %w", seasonCode, division, store.ErrNotFound)
	}

	rows := engine.Standings(teams)
	if s.cache != nil {
		s.cache.SetStandings(ctx, seasonCode, division, rows)
	}
	return rows, nil
}

// GetUserMatches returns a manager's completed matches in a season.
func (s *LeagueService) GetUserMatches(ctx context.Context, handle, seasonCode string) ([]*MatchSummary, error) {
	team, names, err := s.userTeamAndNames(ctx, handle, seasonCode)
	if err != nil {
		return nil, err
	}

	fixtures, err := s.store.Fixtures().ListByTeam(ctx, team.TeamID)
	if err != nil {
		return nil, fmt.Errorf("fetching team fixtures: %w", err)
	}

	var matches []*MatchSummary
	for _, f := range fixtures {
		if f.Status != store.FixtureCompleted {
			continue
		}
		matches = append(matches, fixtureSummary(f, names))
	}
	return matches, nil
}

// GetUpcomingMatches returns a manager's next scheduled matches.
func (s *LeagueService) GetUpcomingMatches(ctx context.Context, handle, seasonCode string, limit int) ([]*MatchSummary, error) {
	team, names, err := s.userTeamAndNames(ctx, handle, seasonCode)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	fixtures, err := s.store.Fixtures().ListUpcomingByTeam(ctx, team.TeamID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching upcoming fixtures: %w", err)
	}

	matches := make([]*MatchSummary, 0, len(fixtures))
	for _, f := range fixtures {
		matches = append(matches, fixtureSummary(f, names))
	}
	return matches, nil
}

// ManagerProfile is the manager-facing account view: club finances,
// fan base and current-season placement.
type ManagerProfile struct {
	Handle          string `json:"handle"`
	Budget          int64  `json:"budget"`
	FanCount        int    `json:"fan_count"`
	StadiumCapacity int    `json:"stadium_capacity"`
	StadiumLevel    int    `json:"stadium_level"`
	MatchesPlayed   int    `json:"matches_played"`
	SeasonCode      string `json:"season_code,omitempty"`
	TeamName        string `json:"team_name,omitempty"`
	Division        int    `json:"division,omitempty"`
}

// GetManagerProfile returns a manager's account state and, when the
// active season holds their team, its name and division.
func (s *LeagueService) GetManagerProfile(ctx context.Context, handle string) (*ManagerProfile, error) {
	manager, err := s.store.Managers().GetByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("fetching manager: %w", err)
	}

	profile := &ManagerProfile{
		Handle:          manager.Handle,
		Budget:          manager.Budget,
		FanCount:        manager.FanCount,
		StadiumCapacity: manager.StadiumCapacity,
		StadiumLevel:    manager.StadiumLevel,
		MatchesPlayed:   manager.MatchesPlayed,
	}

	season, err := s.store.Seasons().GetActive(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return profile, nil
	} else if err != nil {
		return nil, fmt.Errorf("fetching active season: %w", err)
	}

	team, err := s.store.Teams().GetByManager(ctx, manager.ManagerID, season.Code)
	if errors.Is(err, store.ErrNotFound) {
		return profile, nil
	} else if err != nil {
		return nil, fmt.Errorf("fetching manager team: %w", err)
	}

	profile.SeasonCode = season.Code
	profile.TeamName = team.Name
	profile.Division = team.Division
	return profile, nil
}

// GetRoster returns a manager's current squad.
func (s *LeagueService) GetRoster(ctx context.Context, handle string) ([]*store.Player, error) {
	team, _, err := s.userTeamAndNames(ctx, handle, "")
	if err != nil {
		return nil, err
	}
	roster, err := s.store.Players().ListByTeam(ctx, team.TeamID)
	if err != nil {
		return nil, fmt.Errorf("fetching roster: %w", err)
	}
	return roster, nil
}

func (s *LeagueService) userTeamAndNames(ctx context.Context, handle, seasonCode string) (*store.Team, map[int]string, error) {
	manager, err := s.store.Managers().GetByHandle(ctx, handle)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching manager: %w", err)
	}

	if seasonCode == "" {
		season, err := s.store.Seasons().GetActive(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching active season: %w", err)
		}
		seasonCode = season.Code
	}

	team, err := s.store.Teams().GetByManager(ctx, manager.ManagerID, seasonCode)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching manager team: %w", err)
	}

	teams, err := s.store.Teams().ListBySeasonDivision(ctx, seasonCode, team.Division)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching division teams: %w", err)
	}
	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.TeamID] = t.Name
	}
	return team, names, nil
}

func fixtureSummary(f *store.Fixture, names map[int]string) *MatchSummary {
	summary := &MatchSummary{
		FixtureID:  f.ExternalID,
		SeasonCode: f.SeasonCode,
		Gameweek:   f.Gameweek,
		MatchDate:  f.MatchDate,
		HomeTeam:   names[f.HomeTeamID],
		AwayTeam:   names[f.AwayTeamID],
	}
	if f.HomeScore.Valid {
		summary.HomeScore = int(f.HomeScore.Int32)
	}
	if f.AwayScore.Valid {
		summary.AwayScore = int(f.AwayScore.Int32)
	}
	return summary
}

// applyTeamResult folds one side's score line into its cumulative
// stats, keeping the points invariant (wins*3+draws) intact.
func applyTeamResult(t *store.Team, goalsFor, goalsAgainst int) {
	t.MatchesPlayed++
	t.GoalsFor += goalsFor
	t.GoalsAgainst += goalsAgainst
	switch engine.ResultOf(goalsFor, goalsAgainst) {
	case engine.Win:
		t.Wins++
	case engine.Draw:
		t.Draws++
	default:
		t.Losses++
	}
	t.Points = t.Wins*3 + t.Draws
}

func createRoster(ctx context.Context, tx store.Store, teamID int, rnd *rand.Rand) error {
	roster := engine.GenerateRoster(rnd)
	for _, p := range roster {
		p.TeamID = teamID
	}
	return tx.Players().CreateBatch(ctx, roster)
}

// scheduleFixtures seeds the top division's double round-robin. It is
// a no-op when the season already has fixtures, keeping the scheduler
// idempotent per season.
func scheduleFixtures(ctx context.Context, tx store.Store, season *store.Season, teamIDs []int) error {
	count, err := tx.Fixtures().CountBySeason(ctx, season.Code)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	pairings, err := engine.DoubleRoundRobin(teamIDs, season.StartDate)
	if err != nil {
		return fmt.Errorf("building schedule: %w", err)
	}

	fixtures := make([]*store.Fixture, len(pairings))
	for i, p := range pairings {
		fixtures[i] = &store.Fixture{
			ExternalID: uuid.NewString(),
			SeasonCode: season.Code,
			Gameweek:   p.Gameweek,
			MatchDate:  p.MatchDate,
			HomeTeamID: p.HomeTeamID,
			AwayTeamID: p.AwayTeamID,
			Status:     store.FixtureScheduled,
		}
	}
	return tx.Fixtures().CreateBatch(ctx, fixtures)
}

func recordNationCall(ctx context.Context, tx store.Store, managerID int, seasonCode string, selections []engine.CallSelection, total int64) (*store.NationCall, error) {
	payload, err := json.Marshal(selections)
	if err != nil {
		return nil, fmt.Errorf("encoding selections: %w", err)
	}
	record := &store.NationCall{
		ManagerID:   managerID,
		SeasonCode:  seasonCode,
		TotalPayout: total,
		Selections:  string(payload),
	}
	if err := tx.NationCalls().Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func seasonCode(year, sequence int) string {
	return fmt.Sprintf("%d/%02d", year, sequence)
}

func managerRef(managerID int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(managerID), Valid: true}
}

// botNames returns the engine club-name pool minus any collision with
// the manager's club.
func botNames(exclude string) []string {
	names := make([]string, 0, len(engine.ClubNames))
	for _, name := range engine.ClubNames {
		if name != exclude {
			names = append(names, name)
		}
	}
	return names
}
