// Package cache holds the idempotency stores behind the Idempotency-Key
// middleware: Redis when the service has it, process memory otherwise.
package cache

import (
	"github.com/redis/go-redis/v9"
	"github.com/sahelbuild/backend/internal/domain/shared"
)

// DefaultKeyPrefix namespaces idempotency keys in a shared Redis database.
const DefaultKeyPrefix = "ledger:idempotency:"

// NewIdempotencyStore keeps keys in rdb, or in memory when rdb is nil. A
// memory store only deduplicates retries that reach the same instance.
func NewIdempotencyStore(rdb redis.UniversalClient, prefix string) shared.IdempotencyStore {
	if rdb == nil {
		return NewMemoryStore()
	}
	return NewRedisStore(rdb, prefix)
}
