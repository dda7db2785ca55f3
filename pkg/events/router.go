package events

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
)

// DefaultDedupTTL is how long a delivered event_id is remembered.
const DefaultDedupTTL = 10 * time.Minute

// Rejection reasons reported through LifecycleHooks.OnReject.
const (
	RejectToken     = "token"
	RejectDuplicate = "duplicate"
	RejectMalformed = "malformed"
	RejectUnknown   = "unknown"
)

// Response is what the transport writes back on success.
type Response struct {
	// Challenge is set for url_verification and echoed verbatim.
	Challenge string
}

// Router verifies inbound envelopes and dispatches callbacks to Handlers.
type Router struct {
	token      string
	handlers   *Handlers
	dispatcher *dispatch.Dispatcher
	dedup      ports.Deduplicator
	dedupTTL   time.Duration
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	now        func() time.Time
}

// RouterOption configures the Router.
type RouterOption func(*Router)

// WithDispatcher sets the dispatcher callbacks run on.
func WithDispatcher(d *dispatch.Dispatcher) RouterOption {
	return func(r *Router) {
		r.dispatcher = d
	}
}

// WithDeduplicator drops callbacks whose event_id was already seen within ttl.
func WithDeduplicator(d ports.Deduplicator, ttl time.Duration) RouterOption {
	return func(r *Router) {
		r.dedup = d
		if ttl > 0 {
			r.dedupTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Router.
func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers hooks notified for accepted and rejected events.
func WithLifecycleHooks(hooks domain.LifecycleHooks) RouterOption {
	return func(r *Router) {
		r.hooks = hooks
	}
}

// NewRouter creates a Router that accepts envelopes carrying token.
func NewRouter(token string, handlers *Handlers, opts ...RouterOption) *Router {
	r := &Router{
		token:    token,
		handlers: handlers,
		dedupTTL: DefaultDedupTTL,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(dispatch.WithLogger(r.logger))
	}
	return r
}

// Dispatcher returns the dispatcher running the handlers.
func (r *Router) Dispatcher() *dispatch.Dispatcher {
	return r.dispatcher
}

// Handle processes one envelope.
// It returns domain.ErrInvalidToken when the token does not match; any other
// envelope is acknowledged, and callback handling continues in the background.
func (r *Router) Handle(ctx context.Context, env domain.Envelope) (Response, error) {
	if subtle.ConstantTimeCompare([]byte(env.Token), []byte(r.token)) != 1 {
		r.reject(ctx, RejectToken)
		r.logger.Warn("Rejected request with invalid verification token", "type", env.Type, "team_id", env.TeamID)
		return Response{}, domain.ErrInvalidToken
	}

	switch env.Type {
	case domain.EnvelopeURLVerification:
		r.logger.Info("URL verification handshake")
		return Response{Challenge: env.Challenge}, nil

	case domain.EnvelopeEventCallback:
		r.route(ctx, env)
		return Response{}, nil

	default:
		r.logger.Info("Ignoring envelope type", "type", env.Type)
		return Response{}, nil
	}
}

func (r *Router) route(ctx context.Context, env domain.Envelope) {
	if env.Event == nil {
		r.reject(ctx, RejectMalformed)
		r.logger.Warn("Dropping malformed event", "team_id", env.TeamID, "event_id", env.EventID)
		return
	}

	if unknown, ok := env.Event.(domain.UnknownEvent); ok {
		r.reject(ctx, RejectUnknown)
		r.logger.Info("Unhandled event", "type", unknown.Type, "envelope", Redact(env.Raw, DefaultRedactPatterns))
		return
	}

	if r.duplicate(ctx, env) {
		r.reject(ctx, RejectDuplicate)
		r.logger.Debug("Dropping redelivered event", "event_id", env.EventID, "kind", env.Event.Kind())
		return
	}

	obs := domain.ObservedEvent{
		Timestamp: r.now(),
		TeamID:    env.TeamID,
		UserID:    env.Event.Actor(),
		Kind:      env.Event.Kind(),
	}
	if r.hooks.OnEvent != nil {
		r.hooks.OnEvent(ctx, &obs)
	}

	ev := env.Event
	teamID := env.TeamID
	r.dispatcher.Go(ctx, obs, func(ctx context.Context) error {
		return r.handlers.Handle(ctx, teamID, ev)
	})
}

// duplicate claims the event_id. Dedup failures let the event through.
func (r *Router) duplicate(ctx context.Context, env domain.Envelope) bool {
	if r.dedup == nil || env.EventID == "" {
		return false
	}
	claimed, err := r.dedup.Claim(ctx, env.TeamID+"/"+env.EventID, r.dedupTTL)
	if err != nil {
		r.logger.Error("Event dedup unavailable, processing anyway", "event_id", env.EventID, "err", err)
		return false
	}
	return !claimed
}

func (r *Router) reject(ctx context.Context, reason string) {
	if r.hooks.OnReject != nil {
		r.hooks.OnReject(ctx, reason)
	}
}
