package postgres

import (
	"context"
	"fmt"

	"github.com/fortuna/victoria/internal/store"
)

// NationCallRepository handles call-up event history
type NationCallRepository struct {
	q querier
}

// Create records a call-up event
func (r *NationCallRepository) Create(ctx context.Context, nc *store.NationCall) error {
	query := `
		INSERT INTO nation_calls (manager_id, season_code, total_payout, selections)
		VALUES ($1, $2, $3, $4)
		RETURNING call_id, created_at
	`

	err := r.q.QueryRowContext(ctx, query,
		nc.ManagerID, nc.SeasonCode, nc.TotalPayout, nc.Selections,
	).Scan(&nc.CallID, &nc.CreatedAt)
	if err != nil {
		return translateErr(fmt.Errorf("inserting nation call: %w", err))
	}
	return nil
}

// ListByManager returns a manager's call-up history, newest first
func (r *NationCallRepository) ListByManager(ctx context.Context, managerID int, limit int) ([]*store.NationCall, error) {
	query := `
		SELECT call_id, manager_id, season_code, total_payout, selections, created_at
		FROM nation_calls
		WHERE manager_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.QueryContext(ctx, query, managerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying nation calls: %w", err)
	}
	defer rows.Close()

	var calls []*store.NationCall
	for rows.Next() {
		nc := &store.NationCall{}
		err := rows.Scan(&nc.CallID, &nc.ManagerID, &nc.SeasonCode,
			&nc.TotalPayout, &nc.Selections, &nc.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning nation call: %w", err)
		}
		calls = append(calls, nc)
	}
	return calls, rows.Err()
}
