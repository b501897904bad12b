package store

import (
	"context"
	"time"
)

// Store is the storage port the engine runs against. The Postgres
// adapter is the production implementation; an in-memory adapter
// backs tests. All engine and service code depends on this interface
// only, never on a concrete adapter.
type Store interface {
	Managers() ManagerRepository
	Seasons() SeasonRepository
	Teams() TeamRepository
	Players() PlayerRepository
	Fixtures() FixtureRepository
	NationCalls() NationCallRepository

	// Atomic runs fn inside a single all-or-nothing unit of work. The
	// Store passed to fn operates within that unit; mutations are
	// visible together or not at all. Nested calls are not supported.
	Atomic(ctx context.Context, fn func(Store) error) error
}

// ManagerRepository handles manager (user) rows.
type ManagerRepository interface {
	GetByHandle(ctx context.Context, handle string) (*Manager, error)
	GetByID(ctx context.Context, managerID int) (*Manager, error)
	Create(ctx context.Context, m *Manager) error
	// Lock fetches a manager row for exclusive update within the
	// current atomic unit, serializing same-manager mutations.
	Lock(ctx context.Context, managerID int) (*Manager, error)
	Update(ctx context.Context, m *Manager) error
}

// SeasonRepository handles season rows.
type SeasonRepository interface {
	GetByCode(ctx context.Context, code string) (*Season, error)
	GetActive(ctx context.Context) (*Season, error)
	Create(ctx context.Context, s *Season) error
	SetActive(ctx context.Context, code string, active bool) error
}

// TeamRepository handles team rows and their cumulative stats.
type TeamRepository interface {
	Create(ctx context.Context, t *Team) error
	GetByID(ctx context.Context, teamID int) (*Team, error)
	GetByManager(ctx context.Context, managerID int, seasonCode string) (*Team, error)
	ListBySeasonDivision(ctx context.Context, seasonCode string, division int) ([]*Team, error)
	CountBySeason(ctx context.Context, seasonCode string) (int, error)
	UpdateStats(ctx context.Context, t *Team) error
}

// PlayerRepository handles roster rows.
type PlayerRepository interface {
	CreateBatch(ctx context.Context, players []*Player) error
	ListByTeam(ctx context.Context, teamID int) ([]*Player, error)
	Update(ctx context.Context, p *Player) error
	// Reassign moves a full roster to another team row (season
	// carry-over for managed clubs).
	Reassign(ctx context.Context, fromTeamID, toTeamID int) error
}

// FixtureRepository handles fixture rows.
type FixtureRepository interface {
	CreateBatch(ctx context.Context, fixtures []*Fixture) error
	GetByExternalID(ctx context.Context, externalID string) (*Fixture, error)
	ListByGameweek(ctx context.Context, seasonCode string, gameweek int) ([]*Fixture, error)
	ListBySeason(ctx context.Context, seasonCode string) ([]*Fixture, error)
	ListByTeam(ctx context.Context, teamID int) ([]*Fixture, error)
	ListUpcomingByTeam(ctx context.Context, teamID int, limit int) ([]*Fixture, error)
	CountBySeason(ctx context.Context, seasonCode string) (int, error)
	CountByStatus(ctx context.Context, seasonCode string, status string) (int, error)
	Complete(ctx context.Context, fixtureID int, homeScore, awayScore int) error
}

// NationCallRepository handles call-up event history.
type NationCallRepository interface {
	Create(ctx context.Context, nc *NationCall) error
	ListByManager(ctx context.Context, managerID int, limit int) ([]*NationCall, error)
}

// Backoff retries fn with exponential delay while it reports
// ErrContention. Logical failures surface immediately; only transient
// lock contention is worth retrying.
func Backoff(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if err == nil || !IsContention(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay << i):
		}
	}
	return err
}
