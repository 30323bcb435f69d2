package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key layout: cart:{cart_id} -> JSON array of cart items.
const cartKeyPrefix = "cart:"

// Abandoned carts expire on their own.
var cartSnapshotTTL = 7 * 24 * time.Hour

// RedisCartSnapshotRepository stores cart snapshots in Redis.
type RedisCartSnapshotRepository struct {
	rdb    *redis.Client
	opTime time.Duration
}

// NewRedisCartSnapshotRepository creates a repository backed by the given
// Redis address.
func NewRedisCartSnapshotRepository(addr string) *RedisCartSnapshotRepository {
	return &RedisCartSnapshotRepository{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		opTime: 2 * time.Second,
	}
}

// Load returns the raw snapshot for key, or ok=false if none exists.
func (r *RedisCartSnapshotRepository) Load(key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.opTime)
	defer cancel()

	data, err := r.rdb.Get(ctx, cartKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load cart snapshot %s: %w", key, err)
	}
	return data, true, nil
}

// Save overwrites the snapshot for key.
func (r *RedisCartSnapshotRepository) Save(key string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.opTime)
	defer cancel()

	if err := r.rdb.Set(ctx, cartKeyPrefix+key, data, cartSnapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save cart snapshot %s: %w", key, err)
	}
	return nil
}

// Delete removes the snapshot for key; absent keys are not an error.
func (r *RedisCartSnapshotRepository) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.opTime)
	defer cancel()

	if err := r.rdb.Del(ctx, cartKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cart snapshot %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (r *RedisCartSnapshotRepository) Close() error {
	return r.rdb.Close()
}
