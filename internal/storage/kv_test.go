package storage

import (
	"context"
	"testing"
	"time"

	"github.com/prefeitura-rio/app-login/internal/config"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseKV runs the contract every backend must satisfy.
func exerciseKV(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := kv.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, "a", []byte("one"), 0))
	v, ok, err := kv.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("one"), v)

	require.NoError(t, kv.Set(ctx, "a", []byte("two"), time.Hour))
	v, ok, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("two"), v)

	require.NoError(t, kv.Del(ctx, "a"))
	_, ok, err = kv.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting a missing key is not an error
	require.NoError(t, kv.Del(ctx, "a"))
}

func TestInstrumented(t *testing.T) {
	kv := Instrumented(NewMemoryKV(), "memory")
	counter := observability.StoreOperations.WithLabelValues("memory", "set", "success")
	before := testutil.ToFloat64(counter)

	exerciseKV(t, kv)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestOpen_Memory(t *testing.T) {
	kv, err := Open(&config.Config{StoreBackend: config.StoreBackendMemory})
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestOpen_File(t *testing.T) {
	kv, err := Open(&config.Config{
		StoreBackend:  config.StoreBackendFile,
		StoreFilePath: t.TempDir() + "/store.json",
	})
	require.NoError(t, err)
	exerciseKV(t, kv)
}

func TestOpen_Unknown(t *testing.T) {
	_, err := Open(&config.Config{StoreBackend: "etcd"})
	assert.Error(t, err)
}
