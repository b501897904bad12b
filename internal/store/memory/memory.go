// Package memory is an in-memory storage-port adapter used by tests.
// It mirrors the Postgres adapter's semantics: sentinel errors,
// status-guarded fixture completion, and all-or-nothing Atomic units
// implemented as snapshot-and-restore.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/fortuna/victoria/internal/store"
)

func nullInt32(v int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(v), Valid: true}
}

type data struct {
	managers    map[int]store.Manager
	seasons     map[string]store.Season
	teams       map[int]store.Team
	players     map[int]store.Player
	fixtures    map[int]store.Fixture
	nationCalls []store.NationCall
	nextID      int
}

func (d *data) clone() *data {
	c := &data{
		managers: make(map[int]store.Manager, len(d.managers)),
		seasons:  make(map[string]store.Season, len(d.seasons)),
		teams:    make(map[int]store.Team, len(d.teams)),
		players:  make(map[int]store.Player, len(d.players)),
		fixtures: make(map[int]store.Fixture, len(d.fixtures)),
		nextID:   d.nextID,
	}
	for k, v := range d.managers {
		c.managers[k] = v
	}
	for k, v := range d.seasons {
		c.seasons[k] = v
	}
	for k, v := range d.teams {
		c.teams[k] = v
	}
	for k, v := range d.players {
		c.players[k] = v
	}
	for k, v := range d.fixtures {
		c.fixtures[k] = v
	}
	c.nationCalls = append(c.nationCalls, d.nationCalls...)
	return c
}

// Store implements the storage port on process memory.
type Store struct {
	mu   *sync.Mutex
	data *data
	inTx bool
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		mu: &sync.Mutex{},
		data: &data{
			managers: make(map[int]store.Manager),
			seasons:  make(map[string]store.Season),
			teams:    make(map[int]store.Team),
			players:  make(map[int]store.Player),
			fixtures: make(map[int]store.Fixture),
			nextID:   1,
		},
	}
}

func (s *Store) lock() {
	if !s.inTx {
		s.mu.Lock()
	}
}

func (s *Store) unlock() {
	if !s.inTx {
		s.mu.Unlock()
	}
}

func (s *Store) id() int {
	id := s.data.nextID
	s.data.nextID++
	return id
}

// Managers returns the manager repository.
func (s *Store) Managers() store.ManagerRepository { return &managerRepo{s} }

// Seasons returns the season repository.
func (s *Store) Seasons() store.SeasonRepository { return &seasonRepo{s} }

// Teams returns the team repository.
func (s *Store) Teams() store.TeamRepository { return &teamRepo{s} }

// Players returns the player repository.
func (s *Store) Players() store.PlayerRepository { return &playerRepo{s} }

// Fixtures returns the fixture repository.
func (s *Store) Fixtures() store.FixtureRepository { return &fixtureRepo{s} }

// NationCalls returns the nation-call repository.
func (s *Store) NationCalls() store.NationCallRepository { return &nationCallRepo{s} }

// Atomic runs fn under the store-wide lock against a snapshot that is
// discarded on error, giving the same all-or-nothing guarantee as a
// database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(store.Store) error) error {
	if s.inTx {
		return fmt.Errorf("nested atomic unit not supported")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	tx := &Store{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = *snapshot
		return err
	}
	return nil
}

type managerRepo struct{ s *Store }

func (r *managerRepo) GetByHandle(_ context.Context, handle string) (*store.Manager, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, m := range r.s.data.managers {
		if m.Handle == handle {
			copied := m
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("manager %q: %w", handle, store.ErrNotFound)
}

func (r *managerRepo) GetByID(_ context.Context, managerID int) (*store.Manager, error) {
	r.s.lock()
	defer r.s.unlock()
	m, ok := r.s.data.managers[managerID]
	if !ok {
		return nil, fmt.Errorf("manager %d: %w", managerID, store.ErrNotFound)
	}
	copied := m
	return &copied, nil
}

func (r *managerRepo) Create(_ context.Context, m *store.Manager) error {
	r.s.lock()
	defer r.s.unlock()
	for _, existing := range r.s.data.managers {
		if existing.Handle == m.Handle {
			return fmt.Errorf("manager %q already exists: %w", m.Handle, store.ErrInvalidState)
		}
	}
	m.ManagerID = r.s.id()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	r.s.data.managers[m.ManagerID] = *m
	return nil
}

func (r *managerRepo) Lock(ctx context.Context, managerID int) (*store.Manager, error) {
	// The store-wide mutex already serializes mutation.
	return r.GetByID(ctx, managerID)
}

func (r *managerRepo) Update(_ context.Context, m *store.Manager) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.managers[m.ManagerID]; !ok {
		return fmt.Errorf("manager %d: %w", m.ManagerID, store.ErrNotFound)
	}
	m.UpdatedAt = time.Now()
	r.s.data.managers[m.ManagerID] = *m
	return nil
}

type seasonRepo struct{ s *Store }

func (r *seasonRepo) GetByCode(_ context.Context, code string) (*store.Season, error) {
	r.s.lock()
	defer r.s.unlock()
	sn, ok := r.s.data.seasons[code]
	if !ok {
		return nil, fmt.Errorf("season %q: %w", code, store.ErrNotFound)
	}
	copied := sn
	return &copied, nil
}

func (r *seasonRepo) GetActive(_ context.Context) (*store.Season, error) {
	r.s.lock()
	defer r.s.unlock()
	var best *store.Season
	for _, sn := range r.s.data.seasons {
		if !sn.IsActive {
			continue
		}
		copied := sn
		if best == nil || copied.Year > best.Year ||
			(copied.Year == best.Year && copied.Sequence > best.Sequence) {
			best = &copied
		}
	}
	if best == nil {
		return nil, fmt.Errorf("active season: %w", store.ErrNotFound)
	}
	return best, nil
}

func (r *seasonRepo) Create(_ context.Context, sn *store.Season) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.seasons[sn.Code]; ok {
		return fmt.Errorf("season %q already exists: %w", sn.Code, store.ErrInvalidState)
	}
	sn.SeasonID = r.s.id()
	sn.CreatedAt = time.Now()
	r.s.data.seasons[sn.Code] = *sn
	return nil
}

func (r *seasonRepo) SetActive(_ context.Context, code string, active bool) error {
	r.s.lock()
	defer r.s.unlock()
	sn, ok := r.s.data.seasons[code]
	if !ok {
		return fmt.Errorf("season %q: %w", code, store.ErrNotFound)
	}
	sn.IsActive = active
	r.s.data.seasons[code] = sn
	return nil
}

type teamRepo struct{ s *Store }

func (r *teamRepo) Create(_ context.Context, t *store.Team) error {
	r.s.lock()
	defer r.s.unlock()
	t.TeamID = r.s.id()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.s.data.teams[t.TeamID] = *t
	return nil
}

func (r *teamRepo) GetByID(_ context.Context, teamID int) (*store.Team, error) {
	r.s.lock()
	defer r.s.unlock()
	t, ok := r.s.data.teams[teamID]
	if !ok {
		return nil, fmt.Errorf("team %d: %w", teamID, store.ErrNotFound)
	}
	copied := t
	return &copied, nil
}

func (r *teamRepo) GetByManager(_ context.Context, managerID int, seasonCode string) (*store.Team, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, t := range r.s.data.teams {
		if t.SeasonCode == seasonCode && t.ManagerID.Valid && int(t.ManagerID.Int32) == managerID {
			copied := t
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("team for manager %d in season %s: %w", managerID, seasonCode, store.ErrNotFound)
}

func (r *teamRepo) ListBySeasonDivision(_ context.Context, seasonCode string, division int) ([]*store.Team, error) {
	r.s.lock()
	defer r.s.unlock()
	var teams []*store.Team
	for _, t := range r.s.data.teams {
		if t.SeasonCode == seasonCode && t.Division == division {
			copied := t
			teams = append(teams, &copied)
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (r *teamRepo) CountBySeason(_ context.Context, seasonCode string) (int, error) {
	r.s.lock()
	defer r.s.unlock()
	count := 0
	for _, t := range r.s.data.teams {
		if t.SeasonCode == seasonCode {
			count++
		}
	}
	return count, nil
}

func (r *teamRepo) UpdateStats(_ context.Context, t *store.Team) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.teams[t.TeamID]; !ok {
		return fmt.Errorf("team %d: %w", t.TeamID, store.ErrNotFound)
	}
	t.UpdatedAt = time.Now()
	r.s.data.teams[t.TeamID] = *t
	return nil
}

type playerRepo struct{ s *Store }

func (r *playerRepo) CreateBatch(_ context.Context, players []*store.Player) error {
	r.s.lock()
	defer r.s.unlock()
	for _, p := range players {
		p.PlayerID = r.s.id()
		p.CreatedAt = time.Now()
		p.UpdatedAt = p.CreatedAt
		r.s.data.players[p.PlayerID] = *p
	}
	return nil
}

func (r *playerRepo) ListByTeam(_ context.Context, teamID int) ([]*store.Player, error) {
	r.s.lock()
	defer r.s.unlock()
	var players []*store.Player
	for _, p := range r.s.data.players {
		if p.TeamID == teamID {
			copied := p
			players = append(players, &copied)
		}
	}
	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Starter != b.Starter {
			return a.Starter
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.PlayerID < b.PlayerID
	})
	return players, nil
}

func (r *playerRepo) Update(_ context.Context, p *store.Player) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.data.players[p.PlayerID]; !ok {
		return fmt.Errorf("player %d: %w", p.PlayerID, store.ErrNotFound)
	}
	p.UpdatedAt = time.Now()
	r.s.data.players[p.PlayerID] = *p
	return nil
}

func (r *playerRepo) Reassign(_ context.Context, fromTeamID, toTeamID int) error {
	r.s.lock()
	defer r.s.unlock()
	for id, p := range r.s.data.players {
		if p.TeamID == fromTeamID {
			p.TeamID = toTeamID
			p.UpdatedAt = time.Now()
			r.s.data.players[id] = p
		}
	}
	return nil
}

type fixtureRepo struct{ s *Store }

func (r *fixtureRepo) CreateBatch(_ context.Context, fixtures []*store.Fixture) error {
	r.s.lock()
	defer r.s.unlock()
	for _, f := range fixtures {
		f.FixtureID = r.s.id()
		f.CreatedAt = time.Now()
		f.UpdatedAt = f.CreatedAt
		r.s.data.fixtures[f.FixtureID] = *f
	}
	return nil
}

func (r *fixtureRepo) GetByExternalID(_ context.Context, externalID string) (*store.Fixture, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, f := range r.s.data.fixtures {
		if f.ExternalID == externalID {
			copied := f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("fixture %s: %w", externalID, store.ErrNotFound)
}

func (r *fixtureRepo) ListByGameweek(_ context.Context, seasonCode string, gameweek int) ([]*store.Fixture, error) {
	return r.list(func(f store.Fixture) bool {
		return f.SeasonCode == seasonCode && f.Gameweek == gameweek
	}, 0)
}

func (r *fixtureRepo) ListBySeason(_ context.Context, seasonCode string) ([]*store.Fixture, error) {
	return r.list(func(f store.Fixture) bool { return f.SeasonCode == seasonCode }, 0)
}

func (r *fixtureRepo) ListByTeam(_ context.Context, teamID int) ([]*store.Fixture, error) {
	return r.list(func(f store.Fixture) bool {
		return f.HomeTeamID == teamID || f.AwayTeamID == teamID
	}, 0)
}

func (r *fixtureRepo) ListUpcomingByTeam(_ context.Context, teamID int, limit int) ([]*store.Fixture, error) {
	return r.list(func(f store.Fixture) bool {
		return (f.HomeTeamID == teamID || f.AwayTeamID == teamID) && f.Status == store.FixtureScheduled
	}, limit)
}

func (r *fixtureRepo) list(match func(store.Fixture) bool, limit int) ([]*store.Fixture, error) {
	r.s.lock()
	defer r.s.unlock()
	var fixtures []*store.Fixture
	for _, f := range r.s.data.fixtures {
		if match(f) {
			copied := f
			fixtures = append(fixtures, &copied)
		}
	}
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].Gameweek != fixtures[j].Gameweek {
			return fixtures[i].Gameweek < fixtures[j].Gameweek
		}
		return fixtures[i].FixtureID < fixtures[j].FixtureID
	})
	if limit > 0 && len(fixtures) > limit {
		fixtures = fixtures[:limit]
	}
	return fixtures, nil
}

func (r *fixtureRepo) CountBySeason(_ context.Context, seasonCode string) (int, error) {
	fixtures, _ := r.ListBySeason(context.Background(), seasonCode)
	return len(fixtures), nil
}

func (r *fixtureRepo) CountByStatus(_ context.Context, seasonCode string, status string) (int, error) {
	fixtures, _ := r.list(func(f store.Fixture) bool {
		return f.SeasonCode == seasonCode && f.Status == status
	}, 0)
	return len(fixtures), nil
}

func (r *fixtureRepo) Complete(_ context.Context, fixtureID int, homeScore, awayScore int) error {
	r.s.lock()
	defer r.s.unlock()
	f, ok := r.s.data.fixtures[fixtureID]
	if !ok {
		return fmt.Errorf("fixture %d: %w", fixtureID, store.ErrNotFound)
	}
	if f.Status != store.FixtureScheduled {
		return fmt.Errorf("fixture %d not in scheduled state: %w", fixtureID, store.ErrInvalidState)
	}
	f.HomeScore = nullInt32(homeScore)
	f.AwayScore = nullInt32(awayScore)
	f.Status = store.FixtureCompleted
	f.UpdatedAt = time.Now()
	r.s.data.fixtures[fixtureID] = f
	return nil
}

type nationCallRepo struct{ s *Store }

func (r *nationCallRepo) Create(_ context.Context, nc *store.NationCall) error {
	r.s.lock()
	defer r.s.unlock()
	nc.CallID = r.s.id()
	nc.CreatedAt = time.Now()
	r.s.data.nationCalls = append(r.s.data.nationCalls, *nc)
	return nil
}

func (r *nationCallRepo) ListByManager(_ context.Context, managerID int, limit int) ([]*store.NationCall, error) {
	r.s.lock()
	defer r.s.unlock()
	var calls []*store.NationCall
	for i := len(r.s.data.nationCalls) - 1; i >= 0; i-- {
		if r.s.data.nationCalls[i].ManagerID != managerID {
			continue
		}
		copied := r.s.data.nationCalls[i]
		calls = append(calls, &copied)
		if limit > 0 && len(calls) == limit {
			break
		}
	}
	return calls, nil
}
