package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/victoria/internal/store"
)

// SeasonRepository handles season data access
type SeasonRepository struct {
	q querier
}

const seasonColumns = `season_id, code, year, sequence, start_date, is_active, created_at`

// GetByCode finds a season by its "year/sequence" code
func (r *SeasonRepository) GetByCode(ctx context.Context, code string) (*store.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE code = $1`

	s := &store.Season{}
	err := r.q.QueryRowContext(ctx, query, code).Scan(
		&s.SeasonID, &s.Code, &s.Year, &s.Sequence, &s.StartDate, &s.IsActive, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("season %q: %w", code, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying season: %w", err)
	}
	return s, nil
}

// GetActive returns the single active season
func (r *SeasonRepository) GetActive(ctx context.Context) (*store.Season, error) {
	query := `SELECT ` + seasonColumns + ` FROM seasons WHERE is_active = true ORDER BY year DESC, sequence DESC LIMIT 1`

	s := &store.Season{}
	err := r.q.QueryRowContext(ctx, query).Scan(
		&s.SeasonID, &s.Code, &s.Year, &s.Sequence, &s.StartDate, &s.IsActive, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("active season: %w", store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying active season: %w", err)
	}
	return s, nil
}

// Create inserts a new season row
func (r *SeasonRepository) Create(ctx context.Context, s *store.Season) error {
	query := `
		INSERT INTO seasons (code, year, sequence, start_date, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING season_id, created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		s.Code, s.Year, s.Sequence, s.StartDate, s.IsActive,
	).Scan(&s.SeasonID, &s.CreatedAt)
	if err != nil {
		return translateErr(fmt.Errorf("inserting season: %w", err))
	}
	return nil
}

// SetActive flips a season's active flag
func (r *SeasonRepository) SetActive(ctx context.Context, code string, active bool) error {
	result, err := r.q.ExecContext(ctx,
		`UPDATE seasons SET is_active = $2 WHERE code = $1`, code, active)
	if err != nil {
		return translateErr(fmt.Errorf("updating season: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("season %q: %w", code, store.ErrNotFound)
	}
	return nil
}
