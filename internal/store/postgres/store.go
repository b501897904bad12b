// Package postgres is the production adapter behind the storage
// port, written against the league PostgreSQL schema.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/fortuna/victoria/internal/store"
)

// querier abstracts *sql.DB and *sql.Tx so every repository works
// both standalone and inside an atomic unit.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements the storage port on PostgreSQL.
type Store struct {
	db *store.Database
	q  querier
}

// New creates a Postgres-backed store over an open database.
func New(db *store.Database) *Store {
	return &Store{db: db, q: db.DB()}
}

// Managers returns the manager repository.
func (s *Store) Managers() store.ManagerRepository { return &ManagerRepository{q: s.q} }

// Seasons returns the season repository.
func (s *Store) Seasons() store.SeasonRepository { return &SeasonRepository{q: s.q} }

// Teams returns the team repository.
func (s *Store) Teams() store.TeamRepository { return &TeamRepository{q: s.q} }

// Players returns the player repository.
func (s *Store) Players() store.PlayerRepository { return &PlayerRepository{q: s.q} }

// Fixtures returns the fixture repository.
func (s *Store) Fixtures() store.FixtureRepository { return &FixtureRepository{q: s.q} }

// NationCalls returns the nation-call repository.
func (s *Store) NationCalls() store.NationCallRepository { return &NationCallRepository{q: s.q} }

// Atomic runs fn inside one database transaction. Serialization and
// lock failures surface as store.ErrContention so callers can retry
// with backoff.
func (s *Store) Atomic(ctx context.Context, fn func(store.Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fmt.Errorf("nested atomic unit not supported")
	}

	tx, err := s.db.DB().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		return translateErr(err)
	}

	if err := tx.Commit(); err != nil {
		return translateErr(fmt.Errorf("committing transaction: %w", err))
	}
	return nil
}

// translateErr maps Postgres serialization/lock failures onto the
// shared contention sentinel. Codes: 40001 serialization_failure,
// 40P01 deadlock_detected, 55P03 lock_not_available.
func translateErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "55P03":
			return fmt.Errorf("%v: %w", err, store.ErrContention)
		}
	}
	return err
}
