package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/fortuna/victoria/internal/engine"
	"github.com/fortuna/victoria/internal/store"
)

// NationCallService exposes call-up history and an out-of-band
// trigger. During normal play the league service fires call-ups on
// the match cadence; the manual trigger exists for operators.
type NationCallService struct {
	store     store.Store
	publisher EventPublisher

	randFn func() *rand.Rand
}

// NewNationCallService creates a nation-call service. Publisher may
// be nil.
func NewNationCallService(st store.Store, pub EventPublisher) *NationCallService {
	return &NationCallService{
		store:     st,
		publisher: pub,
		randFn: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// TriggerManually runs a call-up selection against the manager's
// current roster regardless of the match counter, records it and
// credits the payout.
func (s *NationCallService) TriggerManually(ctx context.Context, handle string) (*NationCallResult, error) {
	var result *NationCallResult
	var record *store.NationCall

	err := store.Backoff(ctx, contentionAttempts, contentionDelay, func() error {
		return s.store.Atomic(ctx, func(tx store.Store) error {
			manager, err := tx.Managers().GetByHandle(ctx, handle)
			if err != nil {
				return err
			}

			season, err := tx.Seasons().GetActive(ctx)
			if err != nil {
				return err
			}

			team, err := tx.Teams().GetByManager(ctx, manager.ManagerID, season.Code)
			if err != nil {
				return err
			}

			roster, err := tx.Players().ListByTeam(ctx, team.TeamID)
			if err != nil {
				return err
			}
			if len(roster) == 0 {
				return fmt.Errorf("team %d has no roster: %w", team.TeamID, store.ErrIntegrity)
			}

			selections, total := engine.SelectNationSquad(roster, s.randFn())
			result = &NationCallResult{Selections: selections, TotalPayout: total}
			if len(selections) == 0 {
				record = nil
				return nil
			}

			locked, err := tx.Managers().Lock(ctx, manager.ManagerID)
			if err != nil {
				return err
			}
			locked.Budget += total
			if err := tx.Managers().Update(ctx, locked); err != nil {
				return err
			}

			record, err = recordNationCall(ctx, tx, manager.ManagerID, season.Code, selections, total)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("triggering nation call for %q: %w", handle, err)
	}

	if record != nil && s.publisher != nil {
		if err := s.publisher.PublishNationCall(ctx, record); err != nil {
			log.Printf("publishing nation call for %q: %v", handle, err)
		}
	}
	return result, nil
}

// CallRecord is one historical call-up with its selections decoded.
type CallRecord struct {
	CallID      int                    `json:"call_id"`
	SeasonCode  string                 `json:"season_code"`
	TotalPayout int64                  `json:"total_payout"`
	Selections  []engine.CallSelection `json:"selections"`
	CreatedAt   time.Time              `json:"created_at"`
}

// History returns a manager's recent call-ups, newest first.
func (s *NationCallService) History(ctx context.Context, handle string, limit int) ([]*CallRecord, error) {
	manager, err := s.store.Managers().GetByHandle(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("fetching manager: %w", err)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	calls, err := s.store.NationCalls().ListByManager(ctx, manager.ManagerID, limit)
	if err != nil {
		return nil, fmt.Errorf("fetching nation calls: %w", err)
	}

	records := make([]*CallRecord, 0, len(calls))
	for _, call := range calls {
		record := &CallRecord{
			CallID:      call.CallID,
			SeasonCode:  call.SeasonCode,
			TotalPayout: call.TotalPayout,
			CreatedAt:   call.CreatedAt,
		}
		if err := json.Unmarshal([]byte(call.Selections), &record.Selections); err != nil {
			return nil, fmt.Errorf("decoding selections for call %d: %w", call.CallID, err)
		}
		records = append(records, record)
	}
	return records, nil
}
