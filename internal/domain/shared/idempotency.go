package shared

import (
	"context"
	"time"
)

// IdempotencyStore tracks request keys that have already been handled so
// retried requests do not post duplicate financial records
type IdempotencyStore interface {
	// MarkProcessed marks a key as handled with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether a key has already been handled
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Forget releases a key so it can be submitted again. Used when the
	// request guarded by the key failed and the client should retry.
	Forget(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
