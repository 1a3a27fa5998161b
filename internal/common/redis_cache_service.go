package common

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealradar/internal/logging"

	"github.com/redis/go-redis/v9"
)

// RedisCacheService implements CacheInterface over Redis so multiple
// backend replicas can share the analytics cache.
type RedisCacheService struct {
	client *redis.Client
	ctx    context.Context
}

// Ensure RedisCacheService implements CacheInterface
var _ CacheInterface = (*RedisCacheService)(nil)

func NewRedisCacheService(host, port, password string) (*RedisCacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCacheService{client: client, ctx: ctx}, nil
}

// Set serializes the value to JSON and stores it with the duration.
func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		logging.Warn("Redis cache: marshal failed", "key", key, "error", err.Error())
		return
	}
	if err := r.client.Set(r.ctx, key, data, duration).Err(); err != nil {
		logging.Warn("Redis cache: set failed", "key", key, "error", err.Error())
	}
}

// Get decodes the stored JSON into dest, so hits come back as the
// caller's concrete type instead of a generic map.
func (r *RedisCacheService) Get(key string, dest interface{}) bool {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		logging.Warn("Redis cache: get failed", "key", key, "error", err.Error())
		return false
	}

	if err := json.Unmarshal(data, dest); err != nil {
		logging.Warn("Redis cache: unmarshal failed", "key", key, "error", err.Error())
		return false
	}
	return true
}

func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(r.ctx, key).Err(); err != nil {
		logging.Warn("Redis cache: delete failed", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
