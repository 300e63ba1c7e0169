package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Key       string     `bson:"_id"`
	Value     []byte     `bson:"value"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// MongoKV stores one document per key. Expired documents are removed by the
// expires_at TTL index; reads also filter them since the TTL monitor only
// runs periodically.
type MongoKV struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoKV(collection *mongo.Collection) *MongoKV {
	return &MongoKV{collection: collection, now: time.Now}
}

func (m *MongoKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry mongoEntry
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find store entry: %w", err)
	}
	if entry.ExpiresAt != nil && m.now().After(*entry.ExpiresAt) {
		return nil, false, nil
	}
	return entry.Value, true, nil
}

func (m *MongoKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	entry := mongoEntry{Key: key, Value: value, UpdatedAt: now}
	if ttl > 0 {
		exp := now.Add(ttl)
		entry.ExpiresAt = &exp
	}

	_, err := m.collection.ReplaceOne(ctx, bson.M{"_id": key}, entry, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert store entry: %w", err)
	}
	return nil
}

func (m *MongoKV) Del(ctx context.Context, key string) error {
	if _, err := m.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete store entry: %w", err)
	}
	return nil
}
