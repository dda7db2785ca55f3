package memory

import (
	"context"
	"sync"

	"github.com/aretw0/onboard/pkg/domain"
)

// team is one shard of the store: a team's metadata and its users.
type team struct {
	mu    sync.RWMutex
	meta  domain.TeamState
	users map[string]*domain.UserState
}

// Store implements ports.TeamStore in memory.
// Safe for concurrent use. The team index has its own lock and each team
// guards its users separately, so traffic for different teams does not contend.
type Store struct {
	mu    sync.RWMutex
	teams map[string]*team
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		teams: make(map[string]*team),
	}
}

func (s *Store) shard(teamID string) (*team, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[teamID]
	return t, ok
}

// SaveTeam creates or replaces the team metadata.
func (s *Store) SaveTeam(ctx context.Context, meta domain.TeamState) error {
	if t, ok := s.shard(meta.ID); ok {
		t.mu.Lock()
		t.meta = meta
		t.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check: another caller may have created it between the locks.
	if t, ok := s.teams[meta.ID]; ok {
		t.mu.Lock()
		t.meta = meta
		t.mu.Unlock()
		return nil
	}
	s.teams[meta.ID] = &team{
		meta:  meta,
		users: make(map[string]*domain.UserState),
	}
	return nil
}

// LoadTeam retrieves the team metadata.
func (s *Store) LoadTeam(ctx context.Context, teamID string) (domain.TeamState, error) {
	t, ok := s.shard(teamID)
	if !ok {
		return domain.TeamState{}, domain.ErrTeamNotFound
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.meta, nil
}

// SaveUser persists a copy of the user state.
func (s *Store) SaveUser(ctx context.Context, teamID string, user *domain.UserState) error {
	t, ok := s.shard(teamID)
	if !ok {
		return domain.ErrTeamNotFound
	}

	// Deep copy to ensure isolation, similar to serialization
	copied := user.Snapshot()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.users[user.UserID] = copied
	return nil
}

// LoadUser retrieves a copy of the user state.
func (s *Store) LoadUser(ctx context.Context, teamID, userID string) (*domain.UserState, error) {
	t, ok := s.shard(teamID)
	if !ok {
		return nil, domain.ErrTeamNotFound
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	user, ok := t.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	// Copy on read so callers can't mutate store state directly by pointer
	return user.Snapshot(), nil
}

// ListTeams returns the known team IDs.
func (s *Store) ListTeams(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.teams))
	for id := range s.teams {
		ids = append(ids, id)
	}
	return ids, nil
}

// ListUsers returns the user IDs tracked for a team.
func (s *Store) ListUsers(ctx context.Context, teamID string) ([]string, error) {
	t, ok := s.shard(teamID)
	if !ok {
		return nil, domain.ErrTeamNotFound
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.users))
	for id := range t.users {
		ids = append(ids, id)
	}
	return ids, nil
}
