package postgres

import (
	"context"
	"fmt"

	"github.com/fortuna/victoria/internal/store"
)

// PlayerRepository handles roster data access
type PlayerRepository struct {
	q querier
}

const playerColumns = `player_id, team_id, name, position, starter, rating,
	fitness, form, level, experience, card_level, matches_played,
	contract_matches, last_played_at, created_at, updated_at`

// CreateBatch inserts a full roster
func (r *PlayerRepository) CreateBatch(ctx context.Context, players []*store.Player) error {
	query := `
		INSERT INTO players (team_id, name, position, starter, rating,
			fitness, form, level, experience, card_level, matches_played,
			contract_matches, last_played_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING player_id, created_at, updated_at
	`

	for _, p := range players {
		err := r.q.QueryRowContext(ctx, query,
			p.TeamID, p.Name, p.Position, p.Starter, p.Rating,
			p.Fitness, p.Form, p.Level, p.Experience, p.CardLevel,
			p.MatchesPlayed, p.ContractMatches, p.LastPlayedAt,
		).Scan(&p.PlayerID, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return translateErr(fmt.Errorf("inserting player %q: %w", p.Name, err))
		}
	}
	return nil
}

// ListByTeam returns a team's full roster, starters first
func (r *PlayerRepository) ListByTeam(ctx context.Context, teamID int) ([]*store.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players
		WHERE team_id = $1
		ORDER BY starter DESC, position, player_id`

	rows, err := r.q.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("querying roster: %w", err)
	}
	defer rows.Close()

	var players []*store.Player
	for rows.Next() {
		p := &store.Player{}
		err := rows.Scan(
			&p.PlayerID, &p.TeamID, &p.Name, &p.Position, &p.Starter, &p.Rating,
			&p.Fitness, &p.Form, &p.Level, &p.Experience, &p.CardLevel,
			&p.MatchesPlayed, &p.ContractMatches, &p.LastPlayedAt,
			&p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// Update persists a player's condition fields
func (r *PlayerRepository) Update(ctx context.Context, p *store.Player) error {
	query := `
		UPDATE players
		SET fitness = $2, form = $3, level = $4, experience = $5,
			card_level = $6, matches_played = $7, contract_matches = $8,
			last_played_at = $9, updated_at = NOW()
		WHERE player_id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		p.PlayerID, p.Fitness, p.Form, p.Level, p.Experience,
		p.CardLevel, p.MatchesPlayed, p.ContractMatches, p.LastPlayedAt,
	)
	if err != nil {
		return translateErr(fmt.Errorf("updating player: %w", err))
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("player %d: %w", p.PlayerID, store.ErrNotFound)
	}
	return nil
}

// Reassign moves a full roster onto another team row
func (r *PlayerRepository) Reassign(ctx context.Context, fromTeamID, toTeamID int) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE players SET team_id = $2, updated_at = NOW() WHERE team_id = $1`,
		fromTeamID, toTeamID)
	if err != nil {
		return translateErr(fmt.Errorf("reassigning roster: %w", err))
	}
	return nil
}
