package shared

import (
	"context"
	"time"
)

// DefaultIdempotencyTTL is how long a request key is remembered.
const DefaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore remembers client supplied request keys so that a retried
// mutation (a payment posted twice after a timeout) is applied once and the
// retry receives the first response.
type IdempotencyStore interface {
	// Reserve claims key for ttl. It is false when the key is already held.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Complete attaches the response of the finished request to key.
	Complete(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Lookup returns the stored response. ok is false while the first
	// request is still running.
	Lookup(ctx context.Context, key string) (response []byte, ok bool, err error)
	// Release forgets key so a failed request can be retried.
	Release(ctx context.Context, key string) error
	Close() error
}
