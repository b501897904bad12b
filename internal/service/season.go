package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/fortuna/victoria/internal/engine"
	"github.com/fortuna/victoria/internal/store"
)

// Number of teams swapped between divisions at season end.
const exchangeCount = 3

// SeasonService handles season completion checks and the
// promotion/relegation transition into the next season.
type SeasonService struct {
	store     store.Store
	cache     StandingsCache
	publisher EventPublisher

	randFn func() *rand.Rand
	clock  func() time.Time
}

// NewSeasonService creates a season service. Cache and publisher may
// be nil.
func NewSeasonService(st store.Store, cache StandingsCache, pub EventPublisher) *SeasonService {
	return &SeasonService{
		store:     st,
		cache:     cache,
		publisher: pub,
		randFn: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
		clock: time.Now,
	}
}

// CheckSeasonEnd reports whether a manager's active season has played
// out and whether the transition into the next season is still owed.
func (s *SeasonService) CheckSeasonEnd(ctx context.Context, handle string) (*SeasonStatus, error) {
	if _, err := s.store.Managers().GetByHandle(ctx, handle); err != nil {
		return nil, fmt.Errorf("fetching manager: %w", err)
	}

	season, err := s.store.Seasons().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching active season: %w", err)
	}

	status := &SeasonStatus{SeasonCode: season.Code}

	total, err := s.store.Fixtures().CountBySeason(ctx, season.Code)
	if err != nil {
		return nil, fmt.Errorf("counting fixtures: %w", err)
	}
	if total == 0 {
		return status, nil
	}

	scheduled, err := s.store.Fixtures().CountByStatus(ctx, season.Code, store.FixtureScheduled)
	if err != nil {
		return nil, fmt.Errorf("counting scheduled fixtures: %w", err)
	}
	status.SeasonComplete = scheduled == 0

	if status.SeasonComplete {
		next := nextSeasonCode(season, s.clock())
		_, err := s.store.Seasons().GetByCode(ctx, next)
		if errors.Is(err, store.ErrNotFound) {
			status.RelegationPending = true
		} else if err != nil {
			return nil, fmt.Errorf("checking next season: %w", err)
		}
	}
	return status, nil
}

// ProcessTransition closes out a finished season and opens the next
// one: season-end payouts, the three-up three-down exchange, fresh
// team rows, rosters and a new top-division schedule. The whole
// transition is one atomic unit, and re-running it after success is a
// no-op reporting AlreadyTransitioned.
func (s *SeasonService) ProcessTransition(ctx context.Context, seasonCode string) (*TransitionResult, error) {
	var result *TransitionResult
	err := store.Backoff(ctx, contentionAttempts, contentionDelay, func() error {
		return s.store.Atomic(ctx, func(tx store.Store) error {
			season, err := tx.Seasons().GetByCode(ctx, seasonCode)
			if err != nil {
				return err
			}

			nextCode := nextSeasonCode(season, s.clock())
			if _, err := tx.Seasons().GetByCode(ctx, nextCode); err == nil {
				result = &TransitionResult{
					FromSeason:          season.Code,
					ToSeason:            nextCode,
					AlreadyTransitioned: true,
				}
				return nil
			} else if !errors.Is(err, store.ErrNotFound) {
				return err
			}

			scheduled, err := tx.Fixtures().CountByStatus(ctx, season.Code, store.FixtureScheduled)
			if err != nil {
				return err
			}
			if scheduled > 0 {
				return fmt.Errorf("season %s has %d unplayed fixtures: %w",
					season.Code, scheduled, store.ErrInvalidState)
			}

			topTeams, err := tx.Teams().ListBySeasonDivision(ctx, season.Code, store.DivisionTop)
			if err != nil {
				return err
			}
			secondTeams, err := tx.Teams().ListBySeasonDivision(ctx, season.Code, store.DivisionSecond)
			if err != nil {
				return err
			}
			if len(topTeams) <= exchangeCount || len(secondTeams) < exchangeCount {
				return fmt.Errorf("season %s divisions too small to transition: %w",
					season.Code, store.ErrIntegrity)
			}

			topTable := engine.Standings(topTeams)
			secondTable := engine.Standings(secondTeams)

			teamsByID := make(map[int]*store.Team, len(topTeams)+len(secondTeams))
			for _, t := range topTeams {
				teamsByID[t.TeamID] = t
			}
			for _, t := range secondTeams {
				teamsByID[t.TeamID] = t
			}

			relegatedIDs := make(map[int]bool, exchangeCount)
			promotedIDs := make(map[int]bool, exchangeCount)
			result = &TransitionResult{
				FromSeason: season.Code,
				ToSeason:   nextCode,
				Payouts:    make(map[string]engine.Reward),
			}
			for _, row := range topTable[len(topTable)-exchangeCount:] {
				relegatedIDs[row.TeamID] = true
				result.Relegated = append(result.Relegated, row.TeamName)
			}
			for _, row := range secondTable[:exchangeCount] {
				promotedIDs[row.TeamID] = true
				result.Promoted = append(result.Promoted, row.TeamName)
			}

			if err := s.paySeasonRewards(ctx, tx, topTable, store.DivisionTop, teamsByID, result); err != nil {
				return err
			}
			if err := s.paySeasonRewards(ctx, tx, secondTable, store.DivisionSecond, teamsByID, result); err != nil {
				return err
			}

			next := &store.Season{
				Code:      nextCode,
				Year:      s.clock().Year(),
				Sequence:  nextSequence(season, s.clock()),
				StartDate: s.clock(),
				IsActive:  true,
			}
			if err := tx.Seasons().SetActive(ctx, season.Code, false); err != nil {
				return err
			}
			if err := tx.Seasons().Create(ctx, next); err != nil {
				return err
			}

			rnd := s.randFn()
			topIDs, err := s.carryTeams(ctx, tx, next, topTable, secondTable, relegatedIDs, promotedIDs, teamsByID, rnd)
			if err != nil {
				return err
			}
			return scheduleFixtures(ctx, tx, next, topIDs)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("transitioning season %s: %w", seasonCode, err)
	}

	if !result.AlreadyTransitioned {
		if s.cache != nil {
			s.cache.InvalidateSeason(ctx, result.FromSeason)
		}
		if s.publisher != nil {
			if err := s.publisher.PublishSeasonTransitioned(ctx, result); err != nil {
				log.Printf("publishing season transition %s: %v", result.ToSeason, err)
			}
		}
	}
	return result, nil
}

// paySeasonRewards credits placement money to every managed team in a
// final table.
func (s *SeasonService) paySeasonRewards(ctx context.Context, tx store.Store, table []engine.StandingsRow, division int, teamsByID map[int]*store.Team, result *TransitionResult) error {
	for _, row := range table {
		team := teamsByID[row.TeamID]
		if team == nil || !team.Managed() {
			continue
		}
		reward := engine.SeasonRewards(row.Position, division)
		manager, err := tx.Managers().Lock(ctx, int(team.ManagerID.Int32))
		if err != nil {
			return err
		}
		manager.Budget += reward.Total
		if err := tx.Managers().Update(ctx, manager); err != nil {
			return err
		}
		result.Payouts[team.Name] = reward
	}
	return nil
}

// carryTeams creates next-season team rows with zeroed stats and the
// post-exchange division placement. Managed rosters move over intact;
// bot teams draw fresh squads.
func (s *SeasonService) carryTeams(ctx context.Context, tx store.Store, next *store.Season, topTable, secondTable []engine.StandingsRow, relegatedIDs, promotedIDs map[int]bool, teamsByID map[int]*store.Team, rnd *rand.Rand) ([]int, error) {
	var topIDs []int

	carry := func(rows []engine.StandingsRow, fromTop bool) error {
		for _, row := range rows {
			old := teamsByID[row.TeamID]

			division := store.DivisionTop
			if fromTop && relegatedIDs[row.TeamID] {
				division = store.DivisionSecond
			}
			if !fromTop && !promotedIDs[row.TeamID] {
				division = store.DivisionSecond
			}

			team := &store.Team{
				SeasonCode: next.Code,
				Division:   division,
				Name:       old.Name,
				ManagerID:  old.ManagerID,
			}
			if err := tx.Teams().Create(ctx, team); err != nil {
				return err
			}

			if old.Managed() {
				if err := tx.Players().Reassign(ctx, old.TeamID, team.TeamID); err != nil {
					return err
				}
			} else if err := createRoster(ctx, tx, team.TeamID, rnd); err != nil {
				return err
			}

			if division == store.DivisionTop {
				topIDs = append(topIDs, team.TeamID)
			}
		}
		return nil
	}

	if err := carry(topTable, true); err != nil {
		return nil, err
	}
	if err := carry(secondTable, false); err != nil {
		return nil, err
	}
	return topIDs, nil
}

// nextSeasonCode derives the code the season after this one takes: a
// new calendar year resets the sequence, otherwise it increments.
func nextSeasonCode(season *store.Season, now time.Time) string {
	return seasonCode(now.Year(), nextSequence(season, now))
}

func nextSequence(season *store.Season, now time.Time) int {
	if now.Year() != season.Year {
		return 1
	}
	return season.Sequence + 1
}
