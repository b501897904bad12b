package store

import "errors"

// Error taxonomy shared by every adapter. Callers branch with
// errors.Is; adapters wrap these with context.
var (
	// ErrNotFound signals a missing fixture, team, season or manager.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState signals an operation against an entity in the
	// wrong lifecycle state (resolving a completed fixture,
	// transitioning an unfinished season). Never fatal.
	ErrInvalidState = errors.New("invalid state")

	// ErrContention signals a transient lock or serialization failure
	// on concurrent writes. Safe to retry with backoff.
	ErrContention = errors.New("store contention")

	// ErrIntegrity signals inconsistent persisted data (a fixture
	// referencing a missing team, an undecodable roster). The
	// affected unit is skipped, not retried.
	ErrIntegrity = errors.New("data integrity")
)

// IsContention reports whether err is a retryable contention failure.
func IsContention(err error) bool {
	return errors.Is(err, ErrContention)
}

