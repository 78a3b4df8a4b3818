package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nestflow/internal/config"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "nestflow:"

// RedisCache stores cached blobs and rate-limit counters in Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from redis: %w", key, err)
	}
	return nil
}

// CheckRateLimit counts a hit in a fixed window and reports whether it is within limit.
func (r *RedisCache) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	fullKey := keyPrefix + "rate_limit:" + key
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count == 1 {
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}

	return count <= int64(limit), nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
