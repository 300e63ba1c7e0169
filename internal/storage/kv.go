// Package storage provides the key/value persistence capability the session
// store is built on. Every backend honours per-key expiry.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/prefeitura-rio/app-login/internal/config"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"github.com/prefeitura-rio/app-login/internal/utils"
)

// KV is a byte-oriented key/value store with optional TTL.
// A ttl <= 0 means the entry does not expire.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Instrumented wraps kv with a span and a metric per call.
func Instrumented(kv KV, backend string) KV {
	return &instrumentedKV{next: kv, backend: backend}
}

type instrumentedKV struct {
	next    KV
	backend string
}

func (i *instrumentedKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span, cleanup := utils.TraceStoreOperation(ctx, "get", i.backend, key)
	defer cleanup()

	v, ok, err := i.next.Get(ctx, key)
	utils.RecordError(span, err)
	i.count("get", err)
	return v, ok, err
}

func (i *instrumentedKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ctx, span, cleanup := utils.TraceStoreOperation(ctx, "set", i.backend, key)
	defer cleanup()

	err := i.next.Set(ctx, key, value, ttl)
	utils.RecordError(span, err)
	i.count("set", err)
	return err
}

func (i *instrumentedKV) Del(ctx context.Context, key string) error {
	ctx, span, cleanup := utils.TraceStoreOperation(ctx, "del", i.backend, key)
	defer cleanup()

	err := i.next.Del(ctx, key)
	utils.RecordError(span, err)
	i.count("del", err)
	return err
}

func (i *instrumentedKV) count(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.StoreOperations.WithLabelValues(i.backend, op, status).Inc()
}

// Open builds the backend selected by cfg.StoreBackend, connecting to Redis or
// MongoDB through the config package when required.
func Open(cfg *config.Config) (KV, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		return Instrumented(NewMemoryKV(), cfg.StoreBackend), nil
	case config.StoreBackendFile:
		kv, err := NewFileKV(cfg.StoreFilePath)
		if err != nil {
			return nil, err
		}
		return Instrumented(kv, cfg.StoreBackend), nil
	case config.StoreBackendRedis:
		if config.Redis == nil {
			if err := config.InitRedis(); err != nil {
				return nil, err
			}
		}
		return Instrumented(NewRedisKV(config.Redis), cfg.StoreBackend), nil
	case config.StoreBackendMongo:
		if config.MongoDB == nil {
			if err := config.InitMongoDB(); err != nil {
				return nil, err
			}
		}
		return Instrumented(NewMongoKV(config.MongoDB.Collection(cfg.MongoStoreCollection)), cfg.StoreBackend), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
