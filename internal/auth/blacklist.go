package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Blacklist records revoked refresh tokens by jti until they expire.
type Blacklist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisBlacklist keeps revoked token ids in Redis with a TTL matching the
// token's remaining lifetime.
type RedisBlacklist struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisBlacklist returns a blacklist backed by rdb.
func NewRedisBlacklist(rdb *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{rdb: rdb, prefix: "blacklist:jti:"}
}

// Revoke blacklists jti until the given time. Already expired tokens are ignored.
func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return b.rdb.Set(ctx, b.prefix+jti, 1, ttl).Err()
}

// IsRevoked reports whether jti is blacklisted.
func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := b.rdb.Exists(ctx, b.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
