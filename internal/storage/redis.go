package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prefeitura-rio/app-login/internal/redisclient"
	"github.com/redis/go-redis/v9"
)

// RedisKV stores entries as plain Redis strings with native expiry.
type RedisKV struct {
	client *redisclient.Client
}

func NewRedisKV(client *redisclient.Client) *RedisKV {
	return &RedisKV{client: client}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisKV) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}
