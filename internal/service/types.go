package service

import (
	"context"
	"time"

	"github.com/fortuna/victoria/internal/engine"
	"github.com/fortuna/victoria/internal/store"
)

// MatchSummary is the resolved view of one fixture, enriched with
// team names and, for a managed side, the reward breakdown.
type MatchSummary struct {
	FixtureID  string         `json:"fixture_id"`
	SeasonCode string         `json:"season_code"`
	Gameweek   int            `json:"gameweek"`
	MatchDate  time.Time      `json:"match_date"`
	HomeTeam   string         `json:"home_team"`
	AwayTeam   string         `json:"away_team"`
	HomeScore  int            `json:"home_score"`
	AwayScore  int            `json:"away_score"`
	Reward     *engine.Reward `json:"reward,omitempty"`
}

// FixtureFailure reports one fixture that could not be resolved
// during a gameweek batch. It never aborts the remaining fixtures.
type FixtureFailure struct {
	FixtureID string `json:"fixture_id"`
	Reason    string `json:"reason"`
}

// GameweekResult is the outcome of a simulate-gameweek call.
type GameweekResult struct {
	SeasonCode        string             `json:"season_code"`
	Gameweek          int                `json:"gameweek"`
	MatchesSimulated  int                `json:"matches_simulated"`
	Failures          []FixtureFailure   `json:"failures,omitempty"`
	UserMatch         *MatchSummary      `json:"user_match,omitempty"`
	StandingsPosition int                `json:"standings_position,omitempty"`
	RewardBreakdown   *engine.Reward     `json:"reward_breakdown,omitempty"`
	NationCall        *NationCallResult  `json:"nation_call,omitempty"`
}

// NationCallResult is the outcome of one call-up event.
type NationCallResult struct {
	Selections  []engine.CallSelection `json:"selections"`
	TotalPayout int64                  `json:"total_payout"`
}

// SeasonStatus answers the season-end check for a manager.
type SeasonStatus struct {
	SeasonCode        string `json:"season_code"`
	SeasonComplete    bool   `json:"season_complete"`
	RelegationPending bool   `json:"relegation_pending"`
}

// TransitionResult describes a completed (or already performed)
// season transition.
type TransitionResult struct {
	FromSeason          string                   `json:"from_season"`
	ToSeason            string                   `json:"to_season"`
	AlreadyTransitioned bool                     `json:"already_transitioned"`
	Promoted            []string                 `json:"promoted,omitempty"`
	Relegated           []string                 `json:"relegated,omitempty"`
	Payouts             map[string]engine.Reward `json:"payouts,omitempty"`
}

// StandingsCache is the optional read-through cache for standings
// queries. Implemented on Redis; a nil cache disables caching.
type StandingsCache interface {
	GetStandings(ctx context.Context, seasonCode string, division int) ([]engine.StandingsRow, bool)
	SetStandings(ctx context.Context, seasonCode string, division int, rows []engine.StandingsRow)
	InvalidateSeason(ctx context.Context, seasonCode string)
}

// EventPublisher pushes engine events onto the stream backbone for
// downstream consumers. A nil publisher disables publishing.
type EventPublisher interface {
	PublishMatchResolved(ctx context.Context, summary *MatchSummary) error
	PublishNationCall(ctx context.Context, call *store.NationCall) error
	PublishSeasonTransitioned(ctx context.Context, result *TransitionResult) error
}

// Broadcaster fans resolved matches out to live listeners (the
// WebSocket hub). A nil broadcaster disables broadcasting.
type Broadcaster interface {
	BroadcastMatch(summary *MatchSummary)
}
