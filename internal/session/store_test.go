package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/redisclient"
	"github.com/prefeitura-rio/app-login/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func testSession() *models.VerificationSession {
	return &models.VerificationSession{
		PhoneNumber:    "501234567",
		CountryCode:    "+966",
		ServerPhoneKey: "+966501234567",
		IssuedCode:     strPtr("123456"),
		DeliveryMethod: models.DeliveryWhatsApp,
	}
}

func TestStore_VerificationRoundTrip(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), "test:", 0)
	ctx := context.Background()

	vs, err := store.LoadVerification(ctx)
	require.NoError(t, err)
	assert.Nil(t, vs)

	require.NoError(t, store.SaveVerification(ctx, testSession()))

	vs, err = store.LoadVerification(ctx)
	require.NoError(t, err)
	require.NotNil(t, vs)
	assert.Equal(t, testSession(), vs)

	require.NoError(t, store.ClearVerification(ctx))
	vs, err = store.LoadVerification(ctx)
	require.NoError(t, err)
	assert.Nil(t, vs)
}

func TestStore_RecordsAreIndependent(t *testing.T) {
	store := NewStore(storage.NewMemoryKV(), "test:", 0)
	ctx := context.Background()

	id := &models.AuthenticatedIdentity{ID: "u1", Phone: "+966501234567", IsVerified: true, AccessToken: "tok"}
	require.NoError(t, store.SaveVerification(ctx, testSession()))
	require.NoError(t, store.SaveIdentity(ctx, id))

	require.NoError(t, store.ClearVerification(ctx))
	got, err := store.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	require.NoError(t, store.SaveVerification(ctx, testSession()))
	require.NoError(t, store.ClearIdentity(ctx))
	vs, err := store.LoadVerification(ctx)
	require.NoError(t, err)
	assert.NotNil(t, vs)
}

func TestStore_ForDevice(t *testing.T) {
	root := NewStore(storage.NewMemoryKV(), "test:", 0)
	ctx := context.Background()

	a := root.ForDevice("a")
	b := root.ForDevice("b")
	require.NoError(t, a.SaveVerification(ctx, testSession()))

	vs, err := b.LoadVerification(ctx)
	require.NoError(t, err)
	assert.Nil(t, vs)

	vs, err = root.ForDevice("a").LoadVerification(ctx)
	require.NoError(t, err)
	assert.NotNil(t, vs)
}

func TestStore_CorruptRecord(t *testing.T) {
	kv := storage.NewMemoryKV()
	store := NewStore(kv, "test:", 0)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "test:verification_session", []byte("{"), 0))

	_, err := store.LoadVerification(ctx)
	assert.Error(t, err)
}

func TestStore_SessionTTLOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewStore(storage.NewRedisKV(redisclient.NewClient(rdb)), "app-login:", 10*time.Minute)
	ctx := context.Background()

	require.NoError(t, store.SaveVerification(ctx, testSession()))
	require.NoError(t, store.SaveIdentity(ctx, &models.AuthenticatedIdentity{ID: "u1"}))

	assert.Equal(t, 10*time.Minute, mr.TTL("app-login:verification_session"))
	assert.Equal(t, time.Duration(0), mr.TTL("app-login:identity"))

	mr.FastForward(11 * time.Minute)

	vs, err := store.LoadVerification(ctx)
	require.NoError(t, err)
	assert.Nil(t, vs)

	id, err := store.LoadIdentity(ctx)
	require.NoError(t, err)
	assert.NotNil(t, id)
}
