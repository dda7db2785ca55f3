package redis

import (
	"context"
	"fmt"
	"time"

	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces the dedup keys.
const DefaultPrefix = "onboard:event:"

// Deduplicator implements ports.Deduplicator using Redis SET NX PX.
type Deduplicator struct {
	client *backend.Client
	prefix string
}

// Option configures the Deduplicator.
type Option func(*Deduplicator)

// WithPrefix sets the key prefix for claimed events.
func WithPrefix(prefix string) Option {
	return func(d *Deduplicator) {
		d.prefix = prefix
	}
}

// New creates a Redis deduplicator with its own client.
func New(address, password string, db int, opts ...Option) *Deduplicator {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis deduplicator from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Deduplicator {
	d := &Deduplicator{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Claim sets the key only if absent. The key expires after ttl.
func (d *Deduplicator) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	val := fmt.Sprintf("%d", time.Now().UnixNano())
	ok, err := d.client.SetNX(ctx, d.prefix+key, val, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis error claiming event: %w", err)
	}
	return ok, nil
}

// Ping checks connectivity, used at startup.
func (d *Deduplicator) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (d *Deduplicator) Close() error {
	return d.client.Close()
}
