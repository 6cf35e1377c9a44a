package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"focushub/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// ErrRedisNil key does not exist
var ErrRedisNil = errors.New("redis: key not found")

// RedisRepository typed JSON values stored under prefix+id
type RedisRepository[T any] interface {
	Set(ctx context.Context, id string, value T, ttl time.Duration) error
	Get(ctx context.Context, id string) (T, error)
	Del(ctx context.Context, id string) error
	// TTL is zero for missing keys and keys without expiry
	TTL(ctx context.Context, id string) (time.Duration, error)
	// Extend returns ErrRedisNil when the key is gone
	Extend(ctx context.Context, id string, ttl time.Duration) error
}

type redisRepository[T any] struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisClient connects through the sentinels to masterName
func NewRedisClient(masterName string, sentinelAddrs []string, db int) (*redis.Client, error) {
	if len(sentinelAddrs) == 0 {
		return nil, errors.New("no redis sentinel configured, set REDIS_SENTINEL<n>_IP and _PORT")
	}
	rdb := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:    masterName,
		SentinelAddrs: sentinelAddrs,
		DB:            db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis master %s: %w", masterName, err)
	}

	logger.Log.Info("Redis connected", zap.String("master", masterName), zap.Strings("sentinels", sentinelAddrs), zap.Int("db", db))
	return rdb, nil
}

// NewRedisRepository typed repository, every id is stored as prefix+id
func NewRedisRepository[T any](client redis.UniversalClient, prefix string) RedisRepository[T] {
	return &redisRepository[T]{client: client, prefix: prefix}
}

func (r *redisRepository[T]) key(id string) string {
	return r.prefix + id
}

func (r *redisRepository[T]) Set(ctx context.Context, id string, value T, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key(id), err)
	}
	return r.client.Set(ctx, r.key(id), data, ttl).Err()
}

func (r *redisRepository[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return out, ErrRedisNil
	}
	if err != nil {
		return out, fmt.Errorf("get %s: %w", r.key(id), err)
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		logger.Log.Error("redis value decode failed", zap.String("key", r.key(id)), zap.Error(err))
		return out, fmt.Errorf("decode %s: %w", r.key(id), err)
	}
	return out, nil
}

func (r *redisRepository[T]) Del(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

func (r *redisRepository[T]) Extend(ctx context.Context, id string, ttl time.Duration) error {
	ok, err := r.client.Expire(ctx, r.key(id), ttl).Result()
	if err != nil {
		return fmt.Errorf("expire %s: %w", r.key(id), err)
	}
	if !ok {
		return ErrRedisNil
	}
	return nil
}

func (r *redisRepository[T]) TTL(ctx context.Context, id string) (time.Duration, error) {
	ttl, err := r.client.TTL(ctx, r.key(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("ttl %s: %w", r.key(id), err)
	}
	// -1 no expiry, -2 missing
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
