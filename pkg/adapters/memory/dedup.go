package memory

import (
	"context"
	"sync"
	"time"
)

// Deduplicator implements ports.Deduplicator in memory.
// Expired keys are swept lazily on Claim.
type Deduplicator struct {
	mu        sync.Mutex
	seen      map[string]time.Time // key -> expiry
	now       func() time.Time
	lastSweep time.Time
}

// NewDeduplicator creates an empty in-memory deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Claim records key and reports whether it was unseen (or expired).
func (d *Deduplicator) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	d.sweep(now, ttl)

	if exp, ok := d.seen[key]; ok && now.Before(exp) {
		return false, nil
	}
	d.seen[key] = now.Add(ttl)
	return true, nil
}

// sweep drops expired keys at most once per ttl.
func (d *Deduplicator) sweep(now time.Time, ttl time.Duration) {
	if now.Sub(d.lastSweep) < ttl {
		return
	}
	d.lastSweep = now
	for k, exp := range d.seen {
		if !now.Before(exp) {
			delete(d.seen, k)
		}
	}
}

// Len returns the number of remembered keys.
func (d *Deduplicator) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
