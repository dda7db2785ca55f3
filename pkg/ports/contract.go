package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/onboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractTemplate() *domain.Template {
	return &domain.Template{Steps: []domain.Step{
		{Text: domain.PendingMarker + " react", Color: "#f2c744"},
		{Text: domain.PendingMarker + " pin", Color: "#f2c744"},
		{Text: domain.PendingMarker + " share", Color: "#f2c744"},
	}}
}

// RunTeamStoreContract runs a suite of tests to verify that a TeamStore implementation
// adheres to the defined interface contract.
func RunTeamStoreContract(t *testing.T, store TeamStore) {
	ctx := context.Background()
	teamID := "contract-team-" + time.Now().Format("20060102150405")

	t.Run("Load Non-Existent Team", func(t *testing.T) {
		_, err := store.LoadTeam(ctx, "non-existent-"+teamID)
		assert.ErrorIs(t, err, domain.ErrTeamNotFound)

		_, err = store.LoadUser(ctx, "non-existent-"+teamID, "U1")
		assert.ErrorIs(t, err, domain.ErrTeamNotFound)

		err = store.SaveUser(ctx, "non-existent-"+teamID, domain.NewUserState("U1", contractTemplate()))
		assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	})

	t.Run("Save and Load Team", func(t *testing.T) {
		err := store.SaveTeam(ctx, domain.TeamState{ID: teamID, BotUserID: "B1"})
		require.NoError(t, err)

		team, err := store.LoadTeam(ctx, teamID)
		require.NoError(t, err)
		assert.Equal(t, teamID, team.ID)
		assert.Equal(t, "B1", team.BotUserID)
	})

	t.Run("Save and Load User", func(t *testing.T) {
		user := domain.NewUserState("U1", contractTemplate())
		user.Tutorial.Complete(domain.StepPin)

		require.NoError(t, store.SaveUser(ctx, teamID, user))

		loaded, err := store.LoadUser(ctx, teamID, "U1")
		require.NoError(t, err)
		assert.Equal(t, "U1", loaded.UserID)
		assert.True(t, loaded.Tutorial.IsDone(domain.StepPin))
		assert.False(t, loaded.Tutorial.IsDone(domain.StepReaction))
	})

	t.Run("Load Non-Existent User", func(t *testing.T) {
		_, err := store.LoadUser(ctx, teamID, "nobody")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Isolation", func(t *testing.T) {
		loaded, err := store.LoadUser(ctx, teamID, "U1")
		require.NoError(t, err)

		// Mutating a loaded copy must not leak into the store.
		loaded.Tutorial.Complete(domain.StepShare)

		again, err := store.LoadUser(ctx, teamID, "U1")
		require.NoError(t, err)
		assert.False(t, again.Tutorial.IsDone(domain.StepShare))
	})

	t.Run("SaveTeam keeps users", func(t *testing.T) {
		require.NoError(t, store.SaveTeam(ctx, domain.TeamState{ID: teamID, BotUserID: "B2"}))

		_, err := store.LoadUser(ctx, teamID, "U1")
		assert.NoError(t, err)

		team, err := store.LoadTeam(ctx, teamID)
		require.NoError(t, err)
		assert.Equal(t, "B2", team.BotUserID)
	})

	t.Run("List", func(t *testing.T) {
		require.NoError(t, store.SaveUser(ctx, teamID, domain.NewUserState("U2", contractTemplate())))

		teams, err := store.ListTeams(ctx)
		require.NoError(t, err)
		assert.Contains(t, teams, teamID)

		users, err := store.ListUsers(ctx, teamID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"U1", "U2"}, users)

		_, err = store.ListUsers(ctx, "non-existent-"+teamID)
		assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	})
}

// RunDeduplicatorContract verifies the first-claim-wins behavior of a Deduplicator.
func RunDeduplicatorContract(t *testing.T, d Deduplicator) {
	ctx := context.Background()
	key := "contract-event-" + time.Now().Format("20060102150405.000000")

	first, err := d.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, first, "first claim should win")

	second, err := d.Claim(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, second, "repeated claim should be reported as duplicate")

	other, err := d.Claim(ctx, key+"-other", time.Minute)
	require.NoError(t, err)
	assert.True(t, other, "distinct keys are independent")
}
