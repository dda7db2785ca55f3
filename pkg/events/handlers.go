package events

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/messenger"
	"github.com/aretw0/onboard/pkg/session"
)

// Handlers advance tutorials in response to callbacks.
// Each handler holds the user's lock across the state change and the
// outbound send, so updates to one message go out in order.
type Handlers struct {
	sessions  *session.Manager
	messenger *messenger.Messenger
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	now       func() time.Time
}

// HandlersOption configures Handlers.
type HandlersOption func(*Handlers)

// WithHandlersLogger configures a logger for the handlers.
func WithHandlersLogger(logger *slog.Logger) HandlersOption {
	return func(h *Handlers) {
		h.logger = logger
	}
}

// WithHandlersHooks registers hooks notified when a step completes.
func WithHandlersHooks(hooks domain.LifecycleHooks) HandlersOption {
	return func(h *Handlers) {
		h.hooks = hooks
	}
}

// NewHandlers creates the event handlers.
func NewHandlers(sessions *session.Manager, msgr *messenger.Messenger, opts ...HandlersOption) *Handlers {
	h := &Handlers{
		sessions:  sessions,
		messenger: msgr,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle routes ev to its handler. Unknown kinds return domain.ErrUnknownEvent.
func (h *Handlers) Handle(ctx context.Context, teamID string, ev domain.Event) error {
	switch e := ev.(type) {
	case domain.TeamJoin:
		return h.UserJoin(ctx, teamID, e)
	case domain.ReactionAdded:
		return h.ReactionAdded(ctx, teamID, e)
	case domain.PinAdded:
		return h.PinAdded(ctx, teamID, e)
	case domain.Message:
		return h.Message(ctx, teamID, e)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownEvent, ev.Kind())
	}
}

// UserJoin starts a fresh tutorial for the user and sends it as a direct message.
// A user who joins again starts over.
func (h *Handlers) UserJoin(ctx context.Context, teamID string, ev domain.TeamJoin) error {
	return h.sessions.WithUser(ctx, teamID, ev.UserID, func(ctx context.Context, tx *session.Tx) error {
		user, err := tx.Create(ctx)
		if err != nil {
			return err
		}
		h.logger.Info("User joined", "team_id", teamID, "user_id", ev.UserID)

		if _, err := h.messenger.Send(ctx, tx.Team(), user, messenger.Target{}); err != nil {
			return fmt.Errorf("welcome %s: %w", ev.UserID, err)
		}
		return nil
	})
}

// ReactionAdded completes the reaction step and updates the reacted-to message.
func (h *Handlers) ReactionAdded(ctx context.Context, teamID string, ev domain.ReactionAdded) error {
	return h.completeStep(ctx, teamID, ev.UserID, domain.StepReaction,
		messenger.Target{Channel: ev.Channel, TS: ev.TS})
}

// PinAdded completes the pin step and updates the pinned message.
func (h *Handlers) PinAdded(ctx context.Context, teamID string, ev domain.PinAdded) error {
	return h.completeStep(ctx, teamID, ev.UserID, domain.StepPin,
		messenger.Target{Channel: ev.Channel, TS: ev.TS})
}

// Message completes the share step when the message shares another one.
// The bot's own messages are ignored.
func (h *Handlers) Message(ctx context.Context, teamID string, ev domain.Message) error {
	if ev.UserID == "" {
		return nil
	}

	return h.sessions.WithUser(ctx, teamID, ev.UserID, func(ctx context.Context, tx *session.Tx) error {
		if bot := tx.Team().BotUserID; bot != "" && ev.UserID == bot {
			return nil
		}
		att, ok := ev.SharedAttachment()
		if !ok {
			return nil
		}
		return h.advance(ctx, tx, domain.StepShare, messenger.Target{Channel: ev.Channel, TS: att.TS})
	})
}

func (h *Handlers) completeStep(ctx context.Context, teamID, userID string, step domain.StepName, target messenger.Target) error {
	return h.sessions.WithUser(ctx, teamID, userID, func(ctx context.Context, tx *session.Tx) error {
		return h.advance(ctx, tx, step, target)
	})
}

// advance completes step and re-renders the tutorial at target.
// Users without a tutorial are ignored.
func (h *Handlers) advance(ctx context.Context, tx *session.Tx, step domain.StepName, target messenger.Target) error {
	tr, err := tx.UpdateStep(ctx, step)
	if err != nil {
		return err
	}
	if !tr.Found() {
		return nil
	}

	team := tx.Team()
	if tr.Changed {
		h.logger.Info("Step completed", "team_id", team.ID, "user_id", tr.User.UserID, "step", step)
		if h.hooks.OnStepCompleted != nil {
			h.hooks.OnStepCompleted(ctx, &domain.StepEvent{
				ObservedEvent: domain.ObservedEvent{
					Timestamp: h.now(),
					TeamID:    team.ID,
					UserID:    tr.User.UserID,
					Kind:      stepKind(step),
				},
				Step: step,
			})
		}
	}

	if _, err := h.messenger.Send(ctx, team, tr.User, target); err != nil {
		// Not retried: the message keeps its previous state.
		return fmt.Errorf("update %s step for %s: %w", step, tr.User.UserID, err)
	}
	return nil
}

func stepKind(step domain.StepName) domain.EventKind {
	switch step {
	case domain.StepReaction:
		return domain.KindReactionAdded
	case domain.StepPin:
		return domain.KindPinAdded
	default:
		return domain.KindMessage
	}
}
