// Package session persists the two client-side authentication records: the
// pending VerificationSession and the AuthenticatedIdentity.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/storage"
)

const (
	verificationKey = "verification_session"
	identityKey     = "identity"
)

// Store reads and writes session records under a key namespace. The two
// records are independent; clearing one never touches the other.
type Store struct {
	kv         storage.KV
	namespace  string
	sessionTTL time.Duration
}

// NewStore returns a store rooted at prefix. sessionTTL bounds how long a
// pending verification survives; zero keeps it until cleared.
func NewStore(kv storage.KV, prefix string, sessionTTL time.Duration) *Store {
	return &Store{kv: kv, namespace: prefix, sessionTTL: sessionTTL}
}

// ForDevice returns a store scoped to one device. Records of different
// devices never collide.
func (s *Store) ForDevice(deviceID string) *Store {
	return &Store{
		kv:         s.kv,
		namespace:  s.namespace + "device:" + deviceID + ":",
		sessionTTL: s.sessionTTL,
	}
}

func (s *Store) key(name string) string {
	return s.namespace + name
}

// LoadVerification returns the pending session, or nil when none exists.
func (s *Store) LoadVerification(ctx context.Context) (*models.VerificationSession, error) {
	var vs models.VerificationSession
	found, err := s.load(ctx, verificationKey, &vs)
	if err != nil || !found {
		return nil, err
	}
	return &vs, nil
}

// SaveVerification overwrites the pending session.
func (s *Store) SaveVerification(ctx context.Context, vs *models.VerificationSession) error {
	return s.save(ctx, verificationKey, vs, s.sessionTTL)
}

// ClearVerification removes the pending session.
func (s *Store) ClearVerification(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key(verificationKey)); err != nil {
		return fmt.Errorf("failed to clear verification session: %w", err)
	}
	return nil
}

// LoadIdentity returns the authenticated identity, or nil when none exists.
func (s *Store) LoadIdentity(ctx context.Context) (*models.AuthenticatedIdentity, error) {
	var id models.AuthenticatedIdentity
	found, err := s.load(ctx, identityKey, &id)
	if err != nil || !found {
		return nil, err
	}
	return &id, nil
}

// SaveIdentity overwrites the authenticated identity. Identities do not expire.
func (s *Store) SaveIdentity(ctx context.Context, id *models.AuthenticatedIdentity) error {
	return s.save(ctx, identityKey, id, 0)
}

// ClearIdentity removes the authenticated identity (logout).
func (s *Store) ClearIdentity(ctx context.Context) error {
	if err := s.kv.Del(ctx, s.key(identityKey)); err != nil {
		return fmt.Errorf("failed to clear identity: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, name string, dst interface{}) (bool, error) {
	data, ok, err := s.kv.Get(ctx, s.key(name))
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, name string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := s.kv.Set(ctx, s.key(name), data, ttl); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
