package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prefeitura-rio/app-login/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisKV(t *testing.T) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisKV(redisclient.NewClient(rdb)), mr
}

func TestRedisKV(t *testing.T) {
	kv, _ := newTestRedisKV(t)
	exerciseKV(t, kv)
}

func TestRedisKV_Expiry(t *testing.T) {
	kv, mr := newTestRedisKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "k", []byte("v"), 10*time.Minute))
	assert.Equal(t, 10*time.Minute, mr.TTL("k"))

	mr.FastForward(11 * time.Minute)

	_, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKV_NoExpiry(t *testing.T) {
	kv, mr := newTestRedisKV(t)

	require.NoError(t, kv.Set(context.Background(), "identity", []byte("x"), 0))
	assert.Equal(t, time.Duration(0), mr.TTL("identity"))
}

func TestRedisKV_ServerDown(t *testing.T) {
	kv, mr := newTestRedisKV(t)
	mr.Close()

	_, _, err := kv.Get(context.Background(), "k")
	assert.Error(t, err)
}
