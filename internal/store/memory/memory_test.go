package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/fortuna/victoria/internal/store"
)

func TestAtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	st := New()

	if err := st.Managers().Create(ctx, &store.Manager{Handle: "ada", Budget: 100}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	sentinel := errors.New("boom")
	err := st.Atomic(ctx, func(tx store.Store) error {
		m, err := tx.Managers().GetByHandle(ctx, "ada")
		if err != nil {
			return err
		}
		m.Budget = 999
		if err := tx.Managers().Update(ctx, m); err != nil {
			return err
		}
		if err := tx.Managers().Create(ctx, &store.Manager{Handle: "bob"}); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Atomic error = %v, want sentinel", err)
	}

	m, err := st.Managers().GetByHandle(ctx, "ada")
	if err != nil {
		t.Fatalf("GetByHandle: %v", err)
	}
	if m.Budget != 100 {
		t.Fatalf("budget = %d, want rollback to 100", m.Budget)
	}
	if _, err := st.Managers().GetByHandle(ctx, "bob"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("rolled-back manager still present: %v", err)
	}
}

func TestAtomicCommitsOnSuccess(t *testing.T) {
	ctx := context.Background()
	st := New()

	err := st.Atomic(ctx, func(tx store.Store) error {
		return tx.Managers().Create(ctx, &store.Manager{Handle: "ada", Budget: 100})
	})
	if err != nil {
		t.Fatalf("Atomic: %v", err)
	}

	if _, err := st.Managers().GetByHandle(ctx, "ada"); err != nil {
		t.Fatalf("committed manager missing: %v", err)
	}
}

func TestAtomicRejectsNesting(t *testing.T) {
	ctx := context.Background()
	st := New()

	err := st.Atomic(ctx, func(tx store.Store) error {
		return tx.Atomic(ctx, func(store.Store) error { return nil })
	})
	if err == nil {
		t.Fatal("nested atomic unit accepted")
	}
}

func TestFixtureCompleteGuardsStatus(t *testing.T) {
	ctx := context.Background()
	st := New()

	fixtures := []*store.Fixture{{
		ExternalID: "f-1",
		SeasonCode: "2026/01",
		Gameweek:   1,
		HomeTeamID: 1,
		AwayTeamID: 2,
		Status:     store.FixtureScheduled,
	}}
	if err := st.Fixtures().CreateBatch(ctx, fixtures); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	if err := st.Fixtures().Complete(ctx, fixtures[0].FixtureID, 2, 1); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	err := st.Fixtures().Complete(ctx, fixtures[0].FixtureID, 5, 5)
	if !errors.Is(err, store.ErrInvalidState) {
		t.Fatalf("double completion error = %v, want ErrInvalidState", err)
	}

	f, err := st.Fixtures().GetByExternalID(ctx, "f-1")
	if err != nil {
		t.Fatalf("GetByExternalID: %v", err)
	}
	if f.HomeScore.Int32 != 2 || f.AwayScore.Int32 != 1 {
		t.Fatalf("score rewritten to %d-%d", f.HomeScore.Int32, f.AwayScore.Int32)
	}
}

func TestReassignMovesWholeRoster(t *testing.T) {
	ctx := context.Background()
	st := New()

	players := make([]*store.Player, 5)
	for i := range players {
		players[i] = &store.Player{
			TeamID:   10,
			Name:     fmt.Sprintf("Player %d", i),
			Position: store.PositionMID,
		}
	}
	if err := st.Players().CreateBatch(ctx, players); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	if err := st.Players().Reassign(ctx, 10, 20); err != nil {
		t.Fatalf("Reassign: %v", err)
	}

	moved, err := st.Players().ListByTeam(ctx, 20)
	if err != nil {
		t.Fatalf("ListByTeam: %v", err)
	}
	if len(moved) != len(players) {
		t.Fatalf("moved %d players, want %d", len(moved), len(players))
	}

	remaining, err := st.Players().ListByTeam(ctx, 10)
	if err != nil {
		t.Fatalf("ListByTeam: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("%d players left behind", len(remaining))
	}
}
