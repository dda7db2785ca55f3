package domain

import (
	"context"
	"time"
)

// PlatformClient is the outbound half of the messaging platform API.
type PlatformClient interface {
	// PostMessage creates a new message and returns its timestamp.
	PostMessage(ctx context.Context, msg OutboundMessage) (string, error)

	// UpdateMessage edits the message identified by msg.Channel and msg.TS.
	UpdateMessage(ctx context.Context, msg OutboundMessage) error
}

// UserState tracks a single user's tutorial within a team.
type UserState struct {
	UserID    string
	Tutorial  Instance
	JoinedAt  time.Time
	UpdatedAt time.Time
}

// NewUserState starts a user on a fresh tutorial instance.
func NewUserState(userID string, tmpl *Template) *UserState {
	now := time.Now()
	return &UserState{
		UserID:    userID,
		Tutorial:  tmpl.NewInstance(),
		JoinedAt:  now,
		UpdatedAt: now,
	}
}

// Snapshot returns a deep copy of the user state.
func (u *UserState) Snapshot() *UserState {
	if u == nil {
		return nil
	}
	c := *u
	c.Tutorial = u.Tutorial.Clone()
	return &c
}

// TeamState holds what is needed to talk to one team (workspace).
type TeamState struct {
	ID string

	// BotUserID identifies messages authored by the bot itself.
	BotUserID string

	// Client is nil until the team is installed.
	Client PlatformClient
}

// Installed reports whether outbound messages can be sent for the team.
func (t TeamState) Installed() bool {
	return t.Client != nil
}
