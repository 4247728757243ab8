package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisService implements CacheService using Redis
type RedisService struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisService creates a new Redis cache service
func NewRedisService(ctx context.Context, addr string, db int) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	return &RedisService{
		client: client,
		ctx:    ctx,
	}
}

// Get retrieves a value from Redis
func (r *RedisService) Get(key string) ([]byte, error) {
	return r.client.Get(r.ctx, key).Bytes()
}

// Set stores a value in Redis with an expiration time
func (r *RedisService) Set(key string, value []byte, expiration time.Duration) error {
	return r.client.Set(r.ctx, key, value, expiration).Err()
}

// Delete removes a value from Redis
func (r *RedisService) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// Close closes the underlying Redis client
func (r *RedisService) Close() error {
	return r.client.Close()
}
