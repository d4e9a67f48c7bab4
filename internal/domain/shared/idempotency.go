package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers submission keys so a retried request is not
// consolidated twice
type IdempotencyStore interface {
	// MarkProcessed records key with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether key is currently recorded
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Release forgets key so a failed submission can be retried with it
	Release(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
