package store

import (
	"database/sql"
	"time"
)

// Fixture status values
const (
	FixtureScheduled = "scheduled"
	FixtureCompleted = "completed"
)

// Position buckets for roster players
const (
	PositionGK  = "GK"
	PositionDEF = "DEF"
	PositionMID = "MID"
	PositionFWD = "FWD"
)

// Division tiers
const (
	DivisionTop    = 1
	DivisionSecond = 2
)

// Manager represents a human club owner. Engine-controlled teams have
// no manager row.
type Manager struct {
	ManagerID         int       `json:"manager_id" db:"manager_id"`
	Handle            string    `json:"handle" db:"handle"`
	Budget            int64     `json:"budget" db:"budget"`
	FanCount          int       `json:"fan_count" db:"fan_count"`
	StadiumCapacity   int       `json:"stadium_capacity" db:"stadium_capacity"`
	StadiumLevel      int       `json:"stadium_level" db:"stadium_level"`
	FitnessCoachLevel int       `json:"fitness_coach_level" db:"fitness_coach_level"`
	MatchesPlayed     int       `json:"matches_played" db:"matches_played"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Season identifies one competition cycle, coded "year/sequence"
// (e.g. "2026/01"). Exactly one season is active at a time.
type Season struct {
	SeasonID  int       `json:"season_id" db:"season_id"`
	Code      string    `json:"code" db:"code"`
	Year      int       `json:"year" db:"year"`
	Sequence  int       `json:"sequence" db:"sequence"`
	StartDate time.Time `json:"start_date" db:"start_date"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Team belongs to exactly one season and division. Cumulative stats
// are mutated by match resolution; Points is persisted for query
// convenience and must always equal Wins*3+Draws.
type Team struct {
	TeamID        int           `json:"team_id" db:"team_id"`
	SeasonCode    string        `json:"season_code" db:"season_code"`
	Division      int           `json:"division" db:"division"`
	Name          string        `json:"name" db:"name"`
	ManagerID     sql.NullInt32 `json:"manager_id,omitempty" db:"manager_id"`
	MatchesPlayed int           `json:"matches_played" db:"matches_played"`
	Wins          int           `json:"wins" db:"wins"`
	Draws         int           `json:"draws" db:"draws"`
	Losses        int           `json:"losses" db:"losses"`
	GoalsFor      int           `json:"goals_for" db:"goals_for"`
	GoalsAgainst  int           `json:"goals_against" db:"goals_against"`
	Points        int           `json:"points" db:"points"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Managed reports whether a team is bound to a manager.
func (t *Team) Managed() bool {
	return t.ManagerID.Valid
}

// Player is one roster slot. 23 players per team: a starting eleven
// in a 1-4-4-2 shape plus 12 substitutes. Condition fields (fitness,
// form, experience, contract) are the only mutable parts.
type Player struct {
	PlayerID        int          `json:"player_id" db:"player_id"`
	TeamID          int          `json:"team_id" db:"team_id"`
	Name            string       `json:"name" db:"name"`
	Position        string       `json:"position" db:"position"`
	Starter         bool         `json:"starter" db:"starter"`
	Rating          int          `json:"rating" db:"rating"`
	Fitness         float64      `json:"fitness" db:"fitness"`
	Form            float64      `json:"form" db:"form"`
	Level           int          `json:"level" db:"level"`
	Experience      int          `json:"experience" db:"experience"`
	CardLevel       int          `json:"card_level" db:"card_level"`
	MatchesPlayed   int          `json:"matches_played" db:"matches_played"`
	ContractMatches int          `json:"contract_matches" db:"contract_matches"`
	LastPlayedAt    sql.NullTime `json:"last_played_at,omitempty" db:"last_played_at"`
	CreatedAt       time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at" db:"updated_at"`
}

// Fixture is one scheduled or completed match. A completed fixture
// always has both scores set; a scheduled one has neither.
type Fixture struct {
	FixtureID  int           `json:"fixture_id" db:"fixture_id"`
	ExternalID string        `json:"external_id" db:"external_id"`
	SeasonCode string        `json:"season_code" db:"season_code"`
	Gameweek   int           `json:"gameweek" db:"gameweek"`
	MatchDate  time.Time     `json:"match_date" db:"match_date"`
	HomeTeamID int           `json:"home_team_id" db:"home_team_id"`
	AwayTeamID int           `json:"away_team_id" db:"away_team_id"`
	HomeScore  sql.NullInt32 `json:"home_score,omitempty" db:"home_score"`
	AwayScore  sql.NullInt32 `json:"away_score,omitempty" db:"away_score"`
	Status     string        `json:"status" db:"status"`
	CreatedAt  time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at" db:"updated_at"`
}

// NationCall records one national-team call-up event for a manager's
// roster: which players were selected and the total payout credited.
type NationCall struct {
	CallID      int       `json:"call_id" db:"call_id"`
	ManagerID   int       `json:"manager_id" db:"manager_id"`
	SeasonCode  string    `json:"season_code" db:"season_code"`
	TotalPayout int64     `json:"total_payout" db:"total_payout"`
	Selections  string    `json:"selections" db:"selections"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
