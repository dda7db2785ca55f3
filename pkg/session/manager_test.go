package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTemplate() *domain.Template {
	return &domain.Template{Steps: []domain.Step{
		{Text: ":white_large_square: react", Color: "#f2c744"},
		{Text: ":white_large_square: pin", Color: "#f2c744"},
		{Text: ":white_large_square: share", Color: "#f2c744"},
	}}
}

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) LoadUser(ctx context.Context, teamID, userID string) (*domain.UserState, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.LoadUser(ctx, teamID, userID)
}

func (s *SlowStore) SaveUser(ctx context.Context, teamID string, user *domain.UserState) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.SaveUser(ctx, teamID, user)
}

func TestManager_CreateUser(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), testTemplate())
	ctx := context.Background()

	user, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)
	assert.Equal(t, "U1", user.UserID)
	for _, step := range domain.StepNames() {
		assert.False(t, user.Tutorial.IsDone(step), "step %s should be pending", step)
	}

	// The team is created lazily, uninstalled.
	team, err := mgr.Store().LoadTeam(ctx, "A")
	require.NoError(t, err)
	assert.False(t, team.Installed())

	got, ok, err := mgr.GetUser(ctx, "A", "U1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user.Tutorial, got.Tutorial)
}

func TestManager_CreateUser_ResetsProgress(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), testTemplate())
	ctx := context.Background()

	_, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)
	for _, step := range domain.StepNames() {
		_, err := mgr.UpdateStep(ctx, "A", "U1", step)
		require.NoError(t, err)
	}

	user, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)
	done, _ := user.Tutorial.Progress()
	assert.Equal(t, 0, done, "a repeated join must reset all steps to pending")
}

func TestManager_UpdateStep(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), testTemplate())
	ctx := context.Background()
	_, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)

	tr, err := mgr.UpdateStep(ctx, "A", "U1", domain.StepReaction)
	require.NoError(t, err)
	assert.True(t, tr.Found())
	assert.True(t, tr.Changed)
	assert.True(t, tr.User.Tutorial.IsDone(domain.StepReaction))
	assert.Equal(t, domain.CompletedColor, tr.User.Tutorial[0].Color)
	assert.Contains(t, tr.User.Tutorial[0].Text, domain.CompletedMarker)

	stored, _, err := mgr.GetUser(ctx, "A", "U1")
	require.NoError(t, err)
	assert.True(t, stored.Tutorial.IsDone(domain.StepReaction))
	assert.False(t, stored.Tutorial.IsDone(domain.StepPin))
}

func TestManager_UpdateStep_Idempotent(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), testTemplate())
	ctx := context.Background()
	_, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)

	first, err := mgr.UpdateStep(ctx, "A", "U1", domain.StepShare)
	require.NoError(t, err)
	second, err := mgr.UpdateStep(ctx, "A", "U1", domain.StepShare)
	require.NoError(t, err)

	assert.True(t, first.Changed)
	assert.False(t, second.Changed)
	assert.Equal(t, first.User.Tutorial, second.User.Tutorial)
}

func TestManager_UpdateStep_IdempotentWithRepeatedMarker(t *testing.T) {
	tmpl := testTemplate()
	tmpl.Steps[0].Text = ":white_large_square: react :white_large_square:"
	mgr := session.NewManager(memory.NewStore(), tmpl)
	ctx := context.Background()
	_, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)

	first, err := mgr.UpdateStep(ctx, "A", "U1", domain.StepReaction)
	require.NoError(t, err)
	second, err := mgr.UpdateStep(ctx, "A", "U1", domain.StepReaction)
	require.NoError(t, err)

	assert.Equal(t, ":white_check_mark: react :white_large_square:", first.User.Tutorial[0].Text)
	assert.Equal(t, first.User.Tutorial, second.User.Tutorial)

	stored, ok, err := mgr.GetUser(ctx, "A", "U1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, second.User.Tutorial, stored.Tutorial, "returned snapshot matches the stored state")
}

func TestManager_UpdateStep_UnknownIsNoop(t *testing.T) {
	store := memory.NewStore()
	mgr := session.NewManager(store, testTemplate())
	ctx := context.Background()

	t.Run("Unknown Team", func(t *testing.T) {
		tr, err := mgr.UpdateStep(ctx, "nope", "U1", domain.StepPin)
		assert.NoError(t, err)
		assert.False(t, tr.Found())

		teams, _ := store.ListTeams(ctx)
		assert.Empty(t, teams, "no-op must not create state")
	})

	t.Run("Unknown User", func(t *testing.T) {
		_, err := mgr.GetOrCreateTeam(ctx, "A")
		require.NoError(t, err)

		tr, err := mgr.UpdateStep(ctx, "A", "ghost", domain.StepPin)
		assert.NoError(t, err)
		assert.False(t, tr.Found())

		_, ok, err := mgr.GetUser(ctx, "A", "ghost")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestManager_ConcurrentSteps(t *testing.T) {
	// Reaction, pin and share arriving together must all stick.
	store := &SlowStore{Store: memory.NewStore()}
	mgr := session.NewManager(store, testTemplate())
	ctx := context.Background()
	_, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, step := range domain.StepNames() {
		for i := 0; i < 3; i++ {
			wg.Add(1)
			go func(step domain.StepName) {
				defer wg.Done()
				_, err := mgr.UpdateStep(ctx, "A", "U1", step)
				assert.NoError(t, err)
			}(step)
		}
	}
	wg.Wait()

	user, ok, err := mgr.GetUser(ctx, "A", "U1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, user.Tutorial.Finished(), "no update may be lost")
}

func TestManager_DistinctUsersDoNotBlock(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), testTemplate())
	ctx := context.Background()

	entered := make(chan struct{})
	releaseFirst := make(chan struct{})
	go func() {
		_ = mgr.WithUser(ctx, "A", "U1", func(ctx context.Context, tx *session.Tx) error {
			close(entered)
			<-releaseFirst
			return nil
		})
	}()
	<-entered
	defer close(releaseFirst)

	done := make(chan error, 1)
	go func() {
		_, err := mgr.CreateUser(ctx, "A", "U2")
		done <- err
	}()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("work for another user was blocked by U1's lock")
	}
}

func TestManager_GetOrCreateTeam_Atomic(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), testTemplate())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			team, err := mgr.GetOrCreateTeam(ctx, "A")
			assert.NoError(t, err)
			assert.Equal(t, "A", team.ID)
		}()
	}
	wg.Wait()

	teams, err := mgr.Store().ListTeams(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, teams)
}

func TestManager_ProvisionTeam_KeepsUsers(t *testing.T) {
	mgr := session.NewManager(memory.NewStore(), testTemplate())
	ctx := context.Background()
	_, err := mgr.CreateUser(ctx, "A", "U1")
	require.NoError(t, err)

	require.NoError(t, mgr.ProvisionTeam(ctx, domain.TeamState{ID: "A", BotUserID: "UBOT"}))

	team, err := mgr.GetOrCreateTeam(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "UBOT", team.BotUserID)

	_, ok, err := mgr.GetUser(ctx, "A", "U1")
	require.NoError(t, err)
	assert.True(t, ok)
}

type failingStore struct {
	*memory.Store
}

var errDisk = errors.New("disk on fire")

func (f failingStore) LoadUser(ctx context.Context, teamID, userID string) (*domain.UserState, error) {
	return nil, errDisk
}

func TestManager_StoreErrorsPropagate(t *testing.T) {
	store := failingStore{Store: memory.NewStore()}
	mgr := session.NewManager(store, testTemplate())
	ctx := context.Background()
	require.NoError(t, store.SaveTeam(ctx, domain.TeamState{ID: "A"}))

	_, err := mgr.UpdateStep(ctx, "A", "U1", domain.StepPin)
	assert.ErrorIs(t, err, errDisk)

	_, _, err = mgr.GetUser(ctx, "A", fmt.Sprintf("U%d", 2))
	assert.ErrorIs(t, err, errDisk)
}
