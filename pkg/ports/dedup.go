package ports

import (
	"context"
	"time"
)

// Deduplicator remembers delivery keys (e.g., event IDs) for a while.
type Deduplicator interface {
	// Claim records key and reports whether this is the first time it was seen
	// within ttl. A false result means the delivery is a duplicate.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
