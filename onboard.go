package onboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/onboard/internal/logging"
	httpAdapter "github.com/aretw0/onboard/pkg/adapters/http"
	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/dispatch"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/events"
	"github.com/aretw0/onboard/pkg/messenger"
	"github.com/aretw0/onboard/pkg/observability"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/aretw0/onboard/pkg/session"
)

// Bot is the high-level entry point: it wires the state manager, event
// handlers, router and HTTP transport around one tutorial template.
type Bot struct {
	sessions   *session.Manager
	router     *events.Router
	dispatcher *dispatch.Dispatcher
	handler    http.Handler

	store        ports.TeamStore
	dedup        ports.Deduplicator
	dedupTTL     time.Duration
	timeout      time.Duration
	hooks        domain.LifecycleHooks
	registry     *prometheus.Registry
	logger       *slog.Logger
	maxBodyBytes int64
}

// Option defines a functional option for configuring the Bot.
type Option func(*Bot)

// WithLogger sets a custom structured logger for the bot.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bot) {
		b.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(b *Bot) {
		b.hooks = b.hooks.Merge(hooks)
	}
}

// WithStore replaces the in-memory team store.
func WithStore(store ports.TeamStore) Option {
	return func(b *Bot) {
		b.store = store
	}
}

// WithDeduplicator replaces the in-memory redelivery filter. nil disables it.
func WithDeduplicator(d ports.Deduplicator, ttl time.Duration) Option {
	return func(b *Bot) {
		b.dedup = d
		b.dedupTTL = ttl
	}
}

// WithDispatchTimeout bounds each background handler run.
func WithDispatchTimeout(d time.Duration) Option {
	return func(b *Bot) {
		b.timeout = d
	}
}

// WithMetrics records Prometheus metrics on reg and serves them on GET /metrics.
func WithMetrics(reg *prometheus.Registry) Option {
	return func(b *Bot) {
		b.registry = reg
	}
}

// WithMaxBodyBytes limits callback payload size.
func WithMaxBodyBytes(n int64) Option {
	return func(b *Bot) {
		b.maxBodyBytes = n
	}
}

// New creates a Bot that accepts callbacks carrying verificationToken and
// starts every new user on tmpl.
func New(verificationToken string, tmpl *domain.Template, opts ...Option) (*Bot, error) {
	if verificationToken == "" {
		return nil, errors.New("verification token is required")
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	b := &Bot{
		store:        memory.NewStore(),
		dedup:        memory.NewDeduplicator(),
		dedupTTL:     events.DefaultDedupTTL,
		timeout:      dispatch.DefaultTimeout,
		logger:       logging.NewNop(),
		maxBodyBytes: httpAdapter.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(b)
	}

	hooks := b.hooks
	var metricsHandler http.Handler
	if b.registry != nil {
		hooks = observability.NewMetrics(b.registry).Hooks().Merge(hooks)
		metricsHandler = promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{})
	}

	b.sessions = session.NewManager(b.store, tmpl, session.WithLogger(b.logger))
	b.dispatcher = dispatch.New(
		dispatch.WithTimeout(b.timeout),
		dispatch.WithLogger(b.logger),
		dispatch.WithLifecycleHooks(hooks),
	)
	handlers := events.NewHandlers(b.sessions,
		messenger.New(messenger.WithLogger(b.logger), messenger.WithLifecycleHooks(hooks)),
		events.WithHandlersLogger(b.logger),
		events.WithHandlersHooks(hooks),
	)

	routerOpts := []events.RouterOption{
		events.WithDispatcher(b.dispatcher),
		events.WithLogger(b.logger),
		events.WithLifecycleHooks(hooks),
	}
	if b.dedup != nil {
		routerOpts = append(routerOpts, events.WithDeduplicator(b.dedup, b.dedupTTL))
	}
	b.router = events.NewRouter(verificationToken, handlers, routerOpts...)

	httpOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(b.logger),
		httpAdapter.WithVersion(Version),
		httpAdapter.WithMaxBodyBytes(b.maxBodyBytes),
	}
	if metricsHandler != nil {
		httpOpts = append(httpOpts, httpAdapter.WithMetricsHandler(metricsHandler))
	}
	b.handler = httpAdapter.NewHandler(b.router, httpOpts...)

	return b, nil
}

// Install provisions a team so tutorial messages can be sent to it.
func (b *Bot) Install(ctx context.Context, teamID, botUserID string, client domain.PlatformClient) error {
	if teamID == "" {
		return fmt.Errorf("install: team id is required")
	}
	return b.sessions.ProvisionTeam(ctx, domain.TeamState{ID: teamID, BotUserID: botUserID, Client: client})
}

// Handler returns the HTTP handler serving /events and the operational routes.
func (b *Bot) Handler() http.Handler {
	return b.handler
}

// Router returns the event router, for transports other than HTTP.
func (b *Bot) Router() *events.Router {
	return b.router
}

// Sessions returns the team and user state manager.
func (b *Bot) Sessions() *session.Manager {
	return b.sessions
}

// Shutdown stops dispatching new callbacks and waits for in-flight handlers,
// up to ctx's deadline. Callbacks arriving afterwards are acknowledged and dropped.
func (b *Bot) Shutdown(ctx context.Context) error {
	if err := b.dispatcher.Shutdown(ctx); err != nil {
		return fmt.Errorf("handlers still running: %w", err)
	}
	return nil
}
