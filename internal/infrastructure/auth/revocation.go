package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList rejects tokens before they expire. Logout revokes a single
// token by its JTI; a PIN reset or a closed vehicle revokes every token the
// actor was issued so far.
type RevocationList interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	InvalidateActor(ctx context.Context, actor string, ttl time.Duration) error
	IsActorInvalidated(ctx context.Context, actor string, issuedAt time.Time) (bool, error)
}

// issuedBefore compares at the one second resolution of a JWT iat, so a
// token issued in the same second as the invalidation is rejected too.
func issuedBefore(issuedAt, invalidatedAt time.Time) bool {
	return issuedAt.Unix() <= invalidatedAt.Unix()
}

const revocationPrefix = "ledger:revoked:"

// RedisRevocationList shares revocations between server instances. Entries
// expire with the tokens they cover.
type RedisRevocationList struct {
	rdb redis.UniversalClient
	now func() time.Time
}

func NewRedisRevocationList(rdb redis.UniversalClient) *RedisRevocationList {
	return &RedisRevocationList{rdb: rdb, now: time.Now}
}

func (r *RedisRevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, revocationPrefix+"jti:"+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *RedisRevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revocationPrefix+"jti:"+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n == 1, nil
}

func (r *RedisRevocationList) InvalidateActor(ctx context.Context, actor string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, revocationPrefix+"actor:"+actor, r.now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("invalidate %s: %w", actor, err)
	}
	return nil
}

func (r *RedisRevocationList) IsActorInvalidated(ctx context.Context, actor string, issuedAt time.Time) (bool, error) {
	at, err := r.rdb.Get(ctx, revocationPrefix+"actor:"+actor).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("check invalidation of %s: %w", actor, err)
	}
	return issuedBefore(issuedAt, time.Unix(at, 0)), nil
}

// MemoryRevocationList keeps revocations in process. It serves tests and
// single-instance runs without Redis.
type MemoryRevocationList struct {
	mu     sync.Mutex
	tokens map[string]time.Time // jti -> expiry
	actors map[string]actorRevocation
	now    func() time.Time
}

type actorRevocation struct {
	at, until time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		tokens: make(map[string]time.Time),
		actors: make(map[string]actorRevocation),
		now:    time.Now,
	}
}

func (m *MemoryRevocationList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	m.tokens[jti] = m.now().Add(ttl)
	m.mu.Unlock()
	return nil
}

func (m *MemoryRevocationList) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.tokens[jti]
	if ok && !m.now().Before(until) {
		delete(m.tokens, jti)
		ok = false
	}
	return ok, nil
}

// InvalidateActor ignores a non-positive ttl and keeps the entry forever.
func (m *MemoryRevocationList) InvalidateActor(_ context.Context, actor string, ttl time.Duration) error {
	now := m.now()
	rev := actorRevocation{at: now}
	if ttl > 0 {
		rev.until = now.Add(ttl)
	}
	m.mu.Lock()
	m.actors[actor] = rev
	m.mu.Unlock()
	return nil
}

func (m *MemoryRevocationList) IsActorInvalidated(_ context.Context, actor string, issuedAt time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rev, ok := m.actors[actor]
	if !ok {
		return false, nil
	}
	if !rev.until.IsZero() && !m.now().Before(rev.until) {
		delete(m.actors, actor)
		return false, nil
	}
	return issuedBefore(issuedAt, rev.at), nil
}

var (
	_ RevocationList = (*RedisRevocationList)(nil)
	_ RevocationList = (*MemoryRevocationList)(nil)
)
