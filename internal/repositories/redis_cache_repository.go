package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const blacklistKeyPrefix = "token_blacklist:%s"

// RedisCacheRepository - реализация кеша на Redis.
type RedisCacheRepository struct {
	client *redis.Client
}

func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{client: client}
}

func (r *RedisCacheRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisCacheRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, key).Result()
	return n > 0, err
}

// --- Чёрный список отозванных токенов ---

// Add помечает токен отозванным до истечения его срока жизни.
func (r *RedisCacheRepository) Add(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.Set(ctx, fmt.Sprintf(blacklistKeyPrefix, tokenID), "revoked", ttl)
}

// Contains сообщает, отозван ли токен. Ошибка Redis отдаётся вызывающему:
// middleware трактует её как fail-open.
func (r *RedisCacheRepository) Contains(ctx context.Context, tokenID string) (bool, error) {
	return r.Exists(ctx, fmt.Sprintf(blacklistKeyPrefix, tokenID))
}
