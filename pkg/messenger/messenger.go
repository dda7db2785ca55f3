// Package messenger renders a user's tutorial and delivers it to the platform.
package messenger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/tutorial"
)

// Target locates the tutorial message.
// An empty Channel means a direct message to the user.
// An empty TS means the message does not exist yet and is created.
type Target struct {
	Channel string
	TS      string
}

// Messenger sends create or update requests for tutorial messages.
type Messenger struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures the Messenger.
type Option func(*Messenger)

// WithLogger configures a logger for the Messenger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Messenger) {
		m.logger = logger
	}
}

// WithLifecycleHooks registers hooks notified after every platform call.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Messenger) {
		m.hooks = hooks
	}
}

// New creates a Messenger.
func New(opts ...Option) *Messenger {
	m := &Messenger{
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Build returns the outbound message for user at target without sending it.
func Build(user *domain.UserState, target Target) domain.OutboundMessage {
	channel := target.Channel
	if channel == "" {
		channel = user.UserID
	}
	return domain.OutboundMessage{
		AsUser:      true,
		Channel:     channel,
		TS:          target.TS,
		Text:        tutorial.WelcomeText,
		Attachments: user.Tutorial.Attachments(),
	}
}

// Send delivers the user's current tutorial through the team's client.
// It returns the message timestamp: the new one on create, target.TS on update.
func (m *Messenger) Send(ctx context.Context, team domain.TeamState, user *domain.UserState, target Target) (string, error) {
	if !team.Installed() {
		return "", fmt.Errorf("team %s: %w", team.ID, domain.ErrTeamNotInstalled)
	}
	msg := Build(user, target)

	start := m.now()
	ts := msg.TS
	var err error
	if msg.IsUpdate() {
		err = team.Client.UpdateMessage(ctx, msg)
	} else {
		ts, err = team.Client.PostMessage(ctx, msg)
	}
	elapsed := m.now().Sub(start)

	if m.hooks.OnSend != nil {
		m.hooks.OnSend(ctx, &domain.SendEvent{
			ObservedEvent: domain.ObservedEvent{Timestamp: start, TeamID: team.ID, UserID: user.UserID},
			Channel:       msg.Channel,
			Update:        msg.IsUpdate(),
			Duration:      elapsed,
			Err:           err,
		})
	}

	op := "post"
	if msg.IsUpdate() {
		op = "update"
	}
	if err != nil {
		return "", fmt.Errorf("failed to %s message in %s: %w", op, msg.Channel, err)
	}

	m.logger.Debug("Tutorial message sent",
		"op", op,
		"team_id", team.ID,
		"user_id", user.UserID,
		"channel", msg.Channel,
		"ts", ts,
	)
	return ts, nil
}
