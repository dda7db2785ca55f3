package ports

import (
	"context"

	"github.com/aretw0/onboard/pkg/domain"
)

// TeamStore defines the interface for holding team and user state.
// Implementations must be safe for concurrent use across distinct keys.
// Callers serialize read-modify-write cycles per user (see session.Manager).
type TeamStore interface {
	// SaveTeam creates or replaces the team metadata, keeping its users.
	SaveTeam(ctx context.Context, team domain.TeamState) error

	// LoadTeam retrieves the team metadata.
	// Returns domain.ErrTeamNotFound if the team does not exist.
	LoadTeam(ctx context.Context, teamID string) (domain.TeamState, error)

	// SaveUser persists the user state under an existing team.
	// Returns domain.ErrTeamNotFound if the team does not exist.
	SaveUser(ctx context.Context, teamID string, user *domain.UserState) error

	// LoadUser retrieves a user state.
	// Returns domain.ErrTeamNotFound or domain.ErrUserNotFound.
	LoadUser(ctx context.Context, teamID, userID string) (*domain.UserState, error)

	// ListTeams returns the known team IDs.
	ListTeams(ctx context.Context) ([]string, error)

	// ListUsers returns the user IDs tracked for a team.
	ListUsers(ctx context.Context, teamID string) ([]string, error)
}
