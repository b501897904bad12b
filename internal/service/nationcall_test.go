package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/fortuna/victoria/internal/store"
	"github.com/fortuna/victoria/internal/store/memory"
)

func newTestNationCallService(st store.Store) *NationCallService {
	svc := NewNationCallService(st, nil)
	svc.randFn = func() *rand.Rand { return rand.New(rand.NewSource(42)) }
	return svc
}

func TestTriggerManuallyCreditsAndRecords(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	league := newTestLeagueService(st)
	calls := newTestNationCallService(st)

	if _, err := league.InitializeLeague(ctx, "ada"); err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	before, err := st.Managers().GetByHandle(ctx, "ada")
	if err != nil {
		t.Fatalf("fetching manager: %v", err)
	}

	result, err := calls.TriggerManually(ctx, "ada")
	if err != nil {
		t.Fatalf("TriggerManually: %v", err)
	}

	after, err := st.Managers().GetByHandle(ctx, "ada")
	if err != nil {
		t.Fatalf("fetching manager: %v", err)
	}
	if after.Budget != before.Budget+result.TotalPayout {
		t.Fatalf("budget = %d, want %d credited on top of %d",
			after.Budget, result.TotalPayout, before.Budget)
	}

	history, err := calls.History(ctx, "ada", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(result.Selections) > 0 {
		if len(history) != 1 {
			t.Fatalf("history length = %d, want 1", len(history))
		}
		if history[0].TotalPayout != result.TotalPayout {
			t.Fatalf("recorded payout = %d, want %d", history[0].TotalPayout, result.TotalPayout)
		}
		if len(history[0].Selections) != len(result.Selections) {
			t.Fatalf("recorded selections = %d, want %d",
				len(history[0].Selections), len(result.Selections))
		}
	} else if len(history) != 0 {
		t.Fatalf("empty selection recorded anyway: %+v", history)
	}
}

func TestTriggerManuallyUnknownManager(t *testing.T) {
	calls := newTestNationCallService(memory.New())
	if _, err := calls.TriggerManually(context.Background(), "nobody"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	league := newTestLeagueService(st)
	calls := newTestNationCallService(st)

	if _, err := league.InitializeLeague(ctx, "ada"); err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	var payouts []int64
	for i := 0; i < 3; i++ {
		result, err := calls.TriggerManually(ctx, "ada")
		if err != nil {
			t.Fatalf("TriggerManually %d: %v", i, err)
		}
		if len(result.Selections) > 0 {
			payouts = append(payouts, result.TotalPayout)
		}
	}

	history, err := calls.History(ctx, "ada", 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != len(payouts) {
		t.Fatalf("history length = %d, want %d", len(history), len(payouts))
	}
	for i, record := range history {
		// Newest first: the last trigger leads the history.
		if want := payouts[len(payouts)-1-i]; record.TotalPayout != want {
			t.Fatalf("history[%d] payout = %d, want %d", i, record.TotalPayout, want)
		}
	}
}

func TestHistoryRespectsLimit(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	league := newTestLeagueService(st)
	calls := newTestNationCallService(st)

	if _, err := league.InitializeLeague(ctx, "ada"); err != nil {
		t.Fatalf("InitializeLeague: %v", err)
	}

	var recorded int
	for i := 0; i < 4; i++ {
		result, err := calls.TriggerManually(ctx, "ada")
		if err != nil {
			t.Fatalf("TriggerManually %d: %v", i, err)
		}
		if len(result.Selections) > 0 {
			recorded++
		}
	}
	if recorded < 2 {
		t.Skipf("seeded roster produced %d recorded calls, need at least 2", recorded)
	}

	history, err := calls.History(ctx, "ada", 1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
}
