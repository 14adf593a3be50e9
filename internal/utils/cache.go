package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"strconv"       // Key formatting
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
)

// AdminUsersCachePrefix prefixes every cached admin user listing
const AdminUsersCachePrefix = "admin:users:"

// AccountsCachePrefix returns the cache key prefix of one owner's account listings
func AccountsCachePrefix(userID uint) string {
	return "accounts:user:" + strconv.FormatUint(uint64(userID), 10) + ":"
}

// GetCache retrieves a value from Redis and unmarshals it into dest. A nil client is a miss.
func GetCache(ctx context.Context, rdb *redis.Client, key string, dest any) (bool, error) {
	if rdb == nil {
		return false, nil // Caching disabled
	}
	val, err := rdb.Get(ctx, key).Result() // Get value from Redis
	if err == redis.Nil {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	return true, json.Unmarshal([]byte(val), dest) // Unmarshal JSON into dest
}

// SetCache sets a value in Redis with a specified TTL
func SetCache(ctx context.Context, rdb *redis.Client, key string, value any, ttl time.Duration) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return rdb.Set(ctx, key, b, ttl).Err() // Set value in Redis with TTL
}

// DeleteCache deletes keys from Redis
func DeleteCache(ctx context.Context, rdb *redis.Client, keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil // Caching disabled or nothing to do
	}
	return rdb.Del(ctx, keys...).Err() // Delete keys from Redis
}

// DeleteCachePrefix deletes every key starting with prefix
func DeleteCachePrefix(ctx context.Context, rdb *redis.Client, prefix string) error {
	if rdb == nil {
		return nil // Caching disabled
	}
	iter := rdb.Scan(ctx, 0, prefix+"*", 100).Iterator() // Walk matching keys
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()) // Collect key
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return DeleteCache(ctx, rdb, keys...) // Delete collected keys
}

// InvalidateUserCaches drops the admin user listings and the account listings of every id
func InvalidateUserCaches(ctx context.Context, rdb *redis.Client, ids ...uint) error {
	if err := DeleteCachePrefix(ctx, rdb, AdminUsersCachePrefix); err != nil {
		return err
	}
	for _, id := range ids {
		if err := DeleteCachePrefix(ctx, rdb, AccountsCachePrefix(id)); err != nil {
			return err
		}
	}
	return nil
}

// PurgedCacheInvalidator returns a purge hook that drops the caches of purged users
func PurgedCacheInvalidator(rdb *redis.Client) func(ctx context.Context, userIDs []uint) {
	return func(ctx context.Context, userIDs []uint) {
		if err := InvalidateUserCaches(ctx, rdb, userIDs...); err != nil {
			logrus.WithError(err).Warn("Purge: cache invalidation failed") // Entries expire with their TTL
		}
	}
}
