package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates access to team and user state, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.TeamStore
	tmpl  *domain.Template

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used for state timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Manager over the given store.
// tmpl is the tutorial every new user starts from.
func NewManager(store ports.TeamStore, tmpl *domain.Template, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		tmpl:   tmpl,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(), // Default to no-op
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store returns the underlying team store.
func (m *Manager) Store() ports.TeamStore {
	return m.store
}

// Template returns the tutorial definition new users start from.
func (m *Manager) Template() *domain.Template {
	return m.tmpl
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// withLock executes fn while holding the lock for key.
func (m *Manager) withLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func teamKey(teamID string) string         { return "team:" + teamID }
func userKey(teamID, userID string) string { return "user:" + teamID + "/" + userID }

// GetOrCreateTeam returns the team, creating an uninstalled entry on first sight.
func (m *Manager) GetOrCreateTeam(ctx context.Context, teamID string) (domain.TeamState, error) {
	team, err := m.store.LoadTeam(ctx, teamID)
	if err == nil {
		return team, nil
	}
	if !errors.Is(err, domain.ErrTeamNotFound) {
		return domain.TeamState{}, fmt.Errorf("failed to load team: %w", err)
	}

	err = m.withLock(ctx, teamKey(teamID), func(ctx context.Context) error {
		var err error
		team, err = m.store.LoadTeam(ctx, teamID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrTeamNotFound) {
			return fmt.Errorf("failed to check team existence: %w", err)
		}

		team = domain.TeamState{ID: teamID}
		if err := m.store.SaveTeam(ctx, team); err != nil {
			return fmt.Errorf("failed to initialize team: %w", err)
		}
		m.logger.Debug("Team created", "team_id", teamID)
		return nil
	})
	return team, err
}

// ProvisionTeam installs (or re-installs) a team's client and bot identity.
// Existing users of the team are kept.
func (m *Manager) ProvisionTeam(ctx context.Context, team domain.TeamState) error {
	return m.withLock(ctx, teamKey(team.ID), func(ctx context.Context) error {
		if err := m.store.SaveTeam(ctx, team); err != nil {
			return fmt.Errorf("failed to provision team: %w", err)
		}
		m.logger.Info("Team provisioned", "team_id", team.ID, "bot_user_id", team.BotUserID)
		return nil
	})
}

// WithUser runs fn while holding the (team, user) lock.
// Everything fn does through tx, including outbound sends, is serialized per user.
func (m *Manager) WithUser(ctx context.Context, teamID, userID string, fn func(ctx context.Context, tx *Tx) error) error {
	return m.withLock(ctx, userKey(teamID, userID), func(ctx context.Context) error {
		tx := &Tx{m: m, teamID: teamID, userID: userID}

		team, err := m.store.LoadTeam(ctx, teamID)
		switch {
		case err == nil:
			tx.team = team
			tx.teamExists = true
		case errors.Is(err, domain.ErrTeamNotFound):
			tx.team = domain.TeamState{ID: teamID}
		default:
			return fmt.Errorf("failed to load team: %w", err)
		}

		return fn(ctx, tx)
	})
}

// GetUser returns a snapshot of the user state, if the user is known.
func (m *Manager) GetUser(ctx context.Context, teamID, userID string) (*domain.UserState, bool, error) {
	user, err := m.store.LoadUser(ctx, teamID, userID)
	switch {
	case err == nil:
		return user, true, nil
	case errors.Is(err, domain.ErrTeamNotFound), errors.Is(err, domain.ErrUserNotFound):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("failed to load user: %w", err)
	}
}

// CreateUser starts the user on a fresh tutorial, replacing any previous progress.
func (m *Manager) CreateUser(ctx context.Context, teamID, userID string) (*domain.UserState, error) {
	var user *domain.UserState
	err := m.WithUser(ctx, teamID, userID, func(ctx context.Context, tx *Tx) error {
		var err error
		user, err = tx.Create(ctx)
		return err
	})
	return user, err
}

// UpdateStep completes a step for a known user. Unknown teams or users are a no-op.
func (m *Manager) UpdateStep(ctx context.Context, teamID, userID string, step domain.StepName) (Transition, error) {
	var tr Transition
	err := m.WithUser(ctx, teamID, userID, func(ctx context.Context, tx *Tx) error {
		var err error
		tr, err = tx.UpdateStep(ctx, step)
		return err
	})
	return tr, err
}

// Transition is the outcome of UpdateStep.
type Transition struct {
	// User is a snapshot after the update, nil when the user is unknown.
	User *domain.UserState
	// Changed is false when the step had already been completed.
	Changed bool
}

// Found reports whether the user existed.
func (t Transition) Found() bool {
	return t.User != nil
}

// Tx is a view of one user's state, valid only inside WithUser.
type Tx struct {
	m          *Manager
	teamID     string
	userID     string
	team       domain.TeamState
	teamExists bool
}

// Team returns the team the user belongs to. Its Client is nil if not installed.
func (tx *Tx) Team() domain.TeamState {
	return tx.team
}

// User returns a snapshot of the user state, if the user is known.
func (tx *Tx) User(ctx context.Context) (*domain.UserState, bool, error) {
	if !tx.teamExists {
		return nil, false, nil
	}
	return tx.m.GetUser(ctx, tx.teamID, tx.userID)
}

// Create starts the user on a fresh tutorial instance, creating the team if needed.
func (tx *Tx) Create(ctx context.Context) (*domain.UserState, error) {
	if !tx.teamExists {
		team, err := tx.m.GetOrCreateTeam(ctx, tx.teamID)
		if err != nil {
			return nil, err
		}
		tx.team = team
		tx.teamExists = true
	}

	user := domain.NewUserState(tx.userID, tx.m.tmpl)
	user.JoinedAt = tx.m.now()
	user.UpdatedAt = user.JoinedAt

	if err := tx.m.store.SaveUser(ctx, tx.teamID, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	tx.m.logger.Debug("User tutorial started", "team_id", tx.teamID, "user_id", tx.userID)
	return user.Snapshot(), nil
}

// UpdateStep marks step as completed for a known user.
func (tx *Tx) UpdateStep(ctx context.Context, step domain.StepName) (Transition, error) {
	user, ok, err := tx.User(ctx)
	if err != nil {
		return Transition{}, err
	}
	if !ok {
		tx.m.logger.Debug("Step update for unknown user ignored",
			"team_id", tx.teamID,
			"user_id", tx.userID,
			"step", step,
		)
		return Transition{}, nil
	}

	changed := !user.Tutorial.IsDone(step)
	if changed {
		user.Tutorial.Complete(step)
		user.UpdatedAt = tx.m.now()
		if err := tx.m.store.SaveUser(ctx, tx.teamID, user); err != nil {
			return Transition{}, fmt.Errorf("failed to save user: %w", err)
		}
	}
	return Transition{User: user, Changed: changed}, nil
}
