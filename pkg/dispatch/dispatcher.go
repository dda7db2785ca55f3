// Package dispatch runs event handlers off the request path.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/onboard/internal/logging"
	"github.com/aretw0/onboard/pkg/domain"
)

// DefaultTimeout bounds a single handler run.
const DefaultTimeout = 10 * time.Second

// ErrClosed is reported through OnHandled for work submitted after Shutdown.
var ErrClosed = errors.New("dispatcher is shut down")

// Dispatcher starts one goroutine per callback and tracks them for shutdown.
type Dispatcher struct {
	mu      sync.Mutex // guards closed and wg.Add against Shutdown
	closed  bool
	wg      sync.WaitGroup
	timeout time.Duration
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	now     func() time.Time
}

// Option configures the Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the per-handler deadline. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		disp.timeout = d
	}
}

// WithLogger configures a logger for the Dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(disp *Dispatcher) {
		disp.logger = logger
	}
}

// WithLifecycleHooks registers hooks notified when a handler finishes.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(disp *Dispatcher) {
		disp.hooks = hooks
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		timeout: DefaultTimeout,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Go runs fn in a new goroutine.
// fn gets a context that keeps ctx's values but not its cancellation, so the
// caller can return (and its request context end) without aborting the work.
// After Shutdown, fn is dropped.
func (d *Dispatcher) Go(ctx context.Context, obs domain.ObservedEvent, fn func(ctx context.Context) error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("Dropping event after shutdown", "kind", obs.Kind, "team_id", obs.TeamID, "user_id", obs.UserID)
		if d.hooks.OnHandled != nil {
			d.hooks.OnHandled(ctx, &domain.HandledEvent{ObservedEvent: obs, Err: ErrClosed})
		}
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		runCtx := context.WithoutCancel(ctx)
		if d.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(runCtx, d.timeout)
			defer cancel()
		}

		start := d.now()
		err := d.run(runCtx, fn)
		elapsed := d.now().Sub(start)

		if err != nil {
			d.logger.Error("Event handler failed",
				"kind", obs.Kind,
				"team_id", obs.TeamID,
				"user_id", obs.UserID,
				"duration", elapsed,
				"err", err,
			)
		}
		if d.hooks.OnHandled != nil {
			d.hooks.OnHandled(runCtx, &domain.HandledEvent{ObservedEvent: obs, Duration: elapsed, Err: err})
		}
	}()
}

func (d *Dispatcher) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Shutdown stops accepting work and waits for running handlers, up to ctx's deadline.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.Wait(ctx)
}

// Wait blocks until every started handler returns or ctx is done.
// It does not stop new work; use Shutdown when ingress may still be live.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
