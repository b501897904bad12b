package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/victoria/internal/store"
)

// FixtureRepository handles fixture data access
type FixtureRepository struct {
	q querier
}

const fixtureColumns = `fixture_id, external_id, season_code, gameweek, match_date,
	home_team_id, away_team_id, home_score, away_score, status, created_at, updated_at`

// CreateBatch inserts a season's schedule
func (r *FixtureRepository) CreateBatch(ctx context.Context, fixtures []*store.Fixture) error {
	query := `
		INSERT INTO fixtures (external_id, season_code, gameweek, match_date,
			home_team_id, away_team_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING fixture_id, created_at, updated_at
	`

	for _, f := range fixtures {
		err := r.q.QueryRowContext(ctx, query,
			f.ExternalID, f.SeasonCode, f.Gameweek, f.MatchDate,
			f.HomeTeamID, f.AwayTeamID, f.Status,
		).Scan(&f.FixtureID, &f.CreatedAt, &f.UpdatedAt)
		if err != nil {
			return translateErr(fmt.Errorf("inserting fixture %s: %w", f.ExternalID, err))
		}
	}
	return nil
}

// GetByExternalID finds a fixture by its public identifier
func (r *FixtureRepository) GetByExternalID(ctx context.Context, externalID string) (*store.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures WHERE external_id = $1`

	f := &store.Fixture{}
	err := r.q.QueryRowContext(ctx, query, externalID).Scan(
		&f.FixtureID, &f.ExternalID, &f.SeasonCode, &f.Gameweek, &f.MatchDate,
		&f.HomeTeamID, &f.AwayTeamID, &f.HomeScore, &f.AwayScore, &f.Status,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("fixture %s: %w", externalID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying fixture: %w", err)
	}
	return f, nil
}

// ListByGameweek returns all fixtures of one gameweek
func (r *FixtureRepository) ListByGameweek(ctx context.Context, seasonCode string, gameweek int) ([]*store.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures
		WHERE season_code = $1 AND gameweek = $2
		ORDER BY fixture_id`

	rows, err := r.q.QueryContext(ctx, query, seasonCode, gameweek)
	if err != nil {
		return nil, fmt.Errorf("querying gameweek fixtures: %w", err)
	}
	defer rows.Close()

	return r.scanFixtures(rows)
}

// ListBySeason returns every fixture of a season in schedule order
func (r *FixtureRepository) ListBySeason(ctx context.Context, seasonCode string) ([]*store.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures
		WHERE season_code = $1
		ORDER BY gameweek, fixture_id`

	rows, err := r.q.QueryContext(ctx, query, seasonCode)
	if err != nil {
		return nil, fmt.Errorf("querying season fixtures: %w", err)
	}
	defer rows.Close()

	return r.scanFixtures(rows)
}

// ListByTeam returns all fixtures involving a team
func (r *FixtureRepository) ListByTeam(ctx context.Context, teamID int) ([]*store.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures
		WHERE home_team_id = $1 OR away_team_id = $1
		ORDER BY gameweek`

	rows, err := r.q.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("querying team fixtures: %w", err)
	}
	defer rows.Close()

	return r.scanFixtures(rows)
}

// ListUpcomingByTeam returns a team's next scheduled fixtures
func (r *FixtureRepository) ListUpcomingByTeam(ctx context.Context, teamID int, limit int) ([]*store.Fixture, error) {
	query := `SELECT ` + fixtureColumns + ` FROM fixtures
		WHERE (home_team_id = $1 OR away_team_id = $1) AND status = 'scheduled'
		ORDER BY gameweek
		LIMIT $2`

	rows, err := r.q.QueryContext(ctx, query, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying upcoming fixtures: %w", err)
	}
	defer rows.Close()

	return r.scanFixtures(rows)
}

// CountBySeason returns the number of fixtures in a season
func (r *FixtureRepository) CountBySeason(ctx context.Context, seasonCode string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fixtures WHERE season_code = $1`, seasonCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting fixtures: %w", err)
	}
	return count, nil
}

// CountByStatus returns the number of a season's fixtures in a status
func (r *FixtureRepository) CountByStatus(ctx context.Context, seasonCode string, status string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fixtures WHERE season_code = $1 AND status = $2`,
		seasonCode, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting fixtures: %w", err)
	}
	return count, nil
}

// Complete marks a fixture resolved with its final score. The guard
// on status makes double resolution an ErrInvalidState, never a
// silent overwrite.
func (r *FixtureRepository) Complete(ctx context.Context, fixtureID int, homeScore, awayScore int) error {
	query := `
		UPDATE fixtures
		SET home_score = $2, away_score = $3, status = 'completed', updated_at = NOW()
		WHERE fixture_id = $1 AND status = 'scheduled'
	`

	result, err := r.q.ExecContext(ctx, query, fixtureID, homeScore, awayScore)
	if err != nil {
		return translateErr(fmt.Errorf("completing fixture: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("fixture %d not in scheduled state: %w", fixtureID, store.ErrInvalidState)
	}
	return nil
}

// scanFixtures scans multiple fixture rows
func (r *FixtureRepository) scanFixtures(rows *sql.Rows) ([]*store.Fixture, error) {
	var fixtures []*store.Fixture
	for rows.Next() {
		f := &store.Fixture{}
		err := rows.Scan(
			&f.FixtureID, &f.ExternalID, &f.SeasonCode, &f.Gameweek, &f.MatchDate,
			&f.HomeTeamID, &f.AwayTeamID, &f.HomeScore, &f.AwayScore, &f.Status,
			&f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}
