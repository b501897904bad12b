package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/fortuna/victoria/internal/service"
	"github.com/fortuna/victoria/internal/store"
)

// Orchestrator drives the league clock: it advances gameweeks whose
// match date has passed and rolls seasons over once the schedule is
// played out.
type Orchestrator struct {
	db      store.Store
	league  *service.LeagueService
	seasons *service.SeasonService
	config  *Config
	cancel  context.CancelFunc
	handle  string
}

// Config holds scheduler configuration
type Config struct {
	AdvanceInterval    time.Duration // Default: 1m
	EnableAutoAdvance  bool          // Default: false
	EnableAutoRollover bool          // Default: false
	ManagerHandle      string        // Manager whose league the clock drives
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		AdvanceInterval:    time.Minute,
		EnableAutoAdvance:  false,
		EnableAutoRollover: false,
	}
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(db store.Store, league *service.LeagueService, seasons *service.SeasonService, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}

	return &Orchestrator{
		db:      db,
		league:  league,
		seasons: seasons,
		config:  config,
		handle:  config.ManagerHandle,
	}
}

// Start begins the advance loop and blocks until the context is
// cancelled.
func (o *Orchestrator) Start(ctx context.Context) {
	log.Println("╔════════════════════════════════════════╗")
	log.Println("║   Victoria League Orchestrator         ║")
	log.Println("╚════════════════════════════════════════╝")
	log.Printf("Auto advance: %v (interval: %v)", o.config.EnableAutoAdvance, o.config.AdvanceInterval)
	log.Printf("Auto rollover: %v", o.config.EnableAutoRollover)
	log.Println()

	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	if o.config.EnableAutoAdvance {
		go o.runAdvanceLoop(ctx)
	}

	<-ctx.Done()
	log.Println("League orchestrator stopping...")
}

// Stop cancels all scheduled tasks
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
}

// runAdvanceLoop ticks the league clock
func (o *Orchestrator) runAdvanceLoop(ctx context.Context) {
	log.Printf("→ Gameweek advance loop started (interval: %v)", o.config.AdvanceInterval)

	ticker := time.NewTicker(o.config.AdvanceInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := o.advanceOnce(ctx); err != nil {
				log.Printf("⊘ Advance tick failed: %v", err)
			}
		}
	}
}

// advanceOnce simulates the next due gameweek, if any, and rolls the
// season over when the schedule is played out.
func (o *Orchestrator) advanceOnce(ctx context.Context) error {
	if o.handle == "" {
		return nil // No league to drive without a manager
	}

	season, err := o.db.Seasons().GetActive(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil // Nothing to drive yet
	}
	if err != nil {
		return err
	}

	fixture, err := o.nextDueFixture(ctx, season.Code)
	if err != nil {
		return err
	}

	if fixture != nil {
		log.Printf("→ Advancing %s gameweek %d", season.Code, fixture.Gameweek)
		result, err := o.league.SimulateGameweek(ctx, fixture.ExternalID, o.handle)
		if err != nil {
			return err
		}
		log.Printf("✓ Gameweek %d resolved: %d matches, %d failures",
			result.Gameweek, result.MatchesSimulated, len(result.Failures))
		return nil
	}

	if !o.config.EnableAutoRollover {
		return nil
	}

	status, err := o.seasons.CheckSeasonEnd(ctx, o.handle)
	if err != nil {
		return err
	}
	if !status.RelegationPending {
		return nil
	}

	log.Printf("→ Season %s complete, transitioning", season.Code)
	result, err := o.seasons.ProcessTransition(ctx, season.Code)
	if err != nil {
		return err
	}
	log.Printf("✓ Season %s opened (%d promoted, %d relegated)",
		result.ToSeason, len(result.Promoted), len(result.Relegated))
	return nil
}

// nextDueFixture returns the earliest scheduled fixture whose match
// date has passed, or nil when none is due.
func (o *Orchestrator) nextDueFixture(ctx context.Context, seasonCode string) (*store.Fixture, error) {
	fixtures, err := o.db.Fixtures().ListBySeason(ctx, seasonCode)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, f := range fixtures {
		if f.Status != store.FixtureScheduled {
			continue
		}
		if f.MatchDate.After(now) {
			return nil, nil // Schedule is ahead of the clock
		}
		return f, nil
	}
	return nil, nil
}
