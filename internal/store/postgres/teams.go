package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fortuna/victoria/internal/store"
)

// TeamRepository handles team data access
type TeamRepository struct {
	q querier
}

const teamColumns = `team_id, season_code, division, name, manager_id,
	matches_played, wins, draws, losses, goals_for, goals_against, points,
	created_at, updated_at`

func scanTeam(row *sql.Row) (*store.Team, error) {
	t := &store.Team{}
	err := row.Scan(
		&t.TeamID, &t.SeasonCode, &t.Division, &t.Name, &t.ManagerID,
		&t.MatchesPlayed, &t.Wins, &t.Draws, &t.Losses,
		&t.GoalsFor, &t.GoalsAgainst, &t.Points,
		&t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// Create inserts a new team row
func (r *TeamRepository) Create(ctx context.Context, t *store.Team) error {
	query := `
		INSERT INTO teams (season_code, division, name, manager_id,
			matches_played, wins, draws, losses, goals_for, goals_against, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING team_id, created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		t.SeasonCode, t.Division, t.Name, t.ManagerID,
		t.MatchesPlayed, t.Wins, t.Draws, t.Losses,
		t.GoalsFor, t.GoalsAgainst, t.Points,
	).Scan(&t.TeamID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return translateErr(fmt.Errorf("inserting team: %w", err))
	}
	return nil
}

// GetByID finds a team by ID
func (r *TeamRepository) GetByID(ctx context.Context, teamID int) (*store.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_id = $1`

	t, err := scanTeam(r.q.QueryRowContext(ctx, query, teamID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team %d: %w", teamID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return t, nil
}

// GetByManager finds a manager's team within a season
func (r *TeamRepository) GetByManager(ctx context.Context, managerID int, seasonCode string) (*store.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE manager_id = $1 AND season_code = $2`

	t, err := scanTeam(r.q.QueryRowContext(ctx, query, managerID, seasonCode))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("team for manager %d in season %s: %w", managerID, seasonCode, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying team: %w", err)
	}
	return t, nil
}

// ListBySeasonDivision returns all teams of one division in a season
func (r *TeamRepository) ListBySeasonDivision(ctx context.Context, seasonCode string, division int) ([]*store.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams
		WHERE season_code = $1 AND division = $2
		ORDER BY name`

	rows, err := r.q.QueryContext(ctx, query, seasonCode, division)
	if err != nil {
		return nil, fmt.Errorf("querying teams: %w", err)
	}
	defer rows.Close()

	var teams []*store.Team
	for rows.Next() {
		t := &store.Team{}
		err := rows.Scan(
			&t.TeamID, &t.SeasonCode, &t.Division, &t.Name, &t.ManagerID,
			&t.MatchesPlayed, &t.Wins, &t.Draws, &t.Losses,
			&t.GoalsFor, &t.GoalsAgainst, &t.Points,
			&t.CreatedAt, &t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// CountBySeason returns the number of teams in a season
func (r *TeamRepository) CountBySeason(ctx context.Context, seasonCode string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE season_code = $1`, seasonCode).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting teams: %w", err)
	}
	return count, nil
}

// UpdateStats persists a team's cumulative statistics
func (r *TeamRepository) UpdateStats(ctx context.Context, t *store.Team) error {
	query := `
		UPDATE teams
		SET matches_played = $2, wins = $3, draws = $4, losses = $5,
			goals_for = $6, goals_against = $7, points = $8, updated_at = NOW()
		WHERE team_id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		t.TeamID, t.MatchesPlayed, t.Wins, t.Draws, t.Losses,
		t.GoalsFor, t.GoalsAgainst, t.Points,
	)
	if err != nil {
		return translateErr(fmt.Errorf("updating team stats: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("team %d: %w", t.TeamID, store.ErrNotFound)
	}
	return nil
}
