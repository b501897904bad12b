package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/victoria/internal/store"
)

// ManagerRepository handles manager data access
type ManagerRepository struct {
	q querier
}

const managerColumns = `manager_id, handle, budget, fan_count, stadium_capacity,
	stadium_level, fitness_coach_level, matches_played, created_at, updated_at`

// GetByHandle finds a manager by their unique handle
func (r *ManagerRepository) GetByHandle(ctx context.Context, handle string) (*store.Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers WHERE handle = $1`

	m := &store.Manager{}
	err := r.q.QueryRowContext(ctx, query, handle).Scan(
		&m.ManagerID, &m.Handle, &m.Budget, &m.FanCount, &m.StadiumCapacity,
		&m.StadiumLevel, &m.FitnessCoachLevel, &m.MatchesPlayed, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("manager %q: %w", handle, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying manager: %w", err)
	}
	return m, nil
}

// GetByID finds a manager by ID
func (r *ManagerRepository) GetByID(ctx context.Context, managerID int) (*store.Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers WHERE manager_id = $1`

	m := &store.Manager{}
	err := r.q.QueryRowContext(ctx, query, managerID).Scan(
		&m.ManagerID, &m.Handle, &m.Budget, &m.FanCount, &m.StadiumCapacity,
		&m.StadiumLevel, &m.FitnessCoachLevel, &m.MatchesPlayed, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("manager %d: %w", managerID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying manager: %w", err)
	}
	return m, nil
}

// Create inserts a new manager row
func (r *ManagerRepository) Create(ctx context.Context, m *store.Manager) error {
	query := `
		INSERT INTO managers (handle, budget, fan_count, stadium_capacity,
			stadium_level, fitness_coach_level, matches_played)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING manager_id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		m.Handle, m.Budget, m.FanCount, m.StadiumCapacity,
		m.StadiumLevel, m.FitnessCoachLevel, m.MatchesPlayed,
	).Scan(&m.ManagerID, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return translateErr(fmt.Errorf("inserting manager: %w", err))
	}
	return nil
}

// Lock fetches a manager row FOR UPDATE, serializing same-manager
// mutation within the enclosing transaction.
func (r *ManagerRepository) Lock(ctx context.Context, managerID int) (*store.Manager, error) {
	query := `SELECT ` + managerColumns + ` FROM managers WHERE manager_id = $1 FOR UPDATE`

	m := &store.Manager{}
	err := r.q.QueryRowContext(ctx, query, managerID).Scan(
		&m.ManagerID, &m.Handle, &m.Budget, &m.FanCount, &m.StadiumCapacity,
		&m.StadiumLevel, &m.FitnessCoachLevel, &m.MatchesPlayed, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("manager %d: %w", managerID, store.ErrNotFound)
	}
	if err != nil {
		return nil, translateErr(fmt.Errorf("locking manager: %w", err))
	}
	return m, nil
}

// Update persists manager mutations (budget, fans, cumulative matches)
func (r *ManagerRepository) Update(ctx context.Context, m *store.Manager) error {
	query := `
		UPDATE managers
		SET budget = $2, fan_count = $3, stadium_capacity = $4,
			stadium_level = $5, fitness_coach_level = $6,
			matches_played = $7, updated_at = NOW()
		WHERE manager_id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		m.ManagerID, m.Budget, m.FanCount, m.StadiumCapacity,
		m.StadiumLevel, m.FitnessCoachLevel, m.MatchesPlayed,
	)
	if err != nil {
		return translateErr(fmt.Errorf("updating manager: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("manager %d: %w", m.ManagerID, store.ErrNotFound)
	}
	return nil
}
