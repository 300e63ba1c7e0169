package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prefeitura-rio/app-login/internal/models"
	"github.com/prefeitura-rio/app-login/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBridge(t *testing.T, addr string) (*RedisBridge, *Bus) {
	t.Helper()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	bus := NewBus(8)
	return NewRedisBridge(redisclient.NewClient(rdb), "app-login:events", bus), bus
}

func runBridge(t *testing.T, b *RedisBridge) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, ready) }()

	select {
	case <-ready:
	case err := <-done:
		t.Fatalf("bridge stopped early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("bridge did not subscribe")
	}
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func TestRedisBridge_RelaysLoginAcrossProcesses(t *testing.T) {
	mr := miniredis.RunT(t)
	a, _ := newBridge(t, mr.Addr())
	b, busB := newBridge(t, mr.Addr())
	runBridge(t, a)
	runBridge(t, b)

	ch, cancel := busB.Subscribe(nil)
	defer cancel()

	a.Publish(context.Background(), LoginOccurred("d1", &models.AuthenticatedIdentity{ID: "u1"}))

	select {
	case ev := <-ch:
		assert.Equal(t, KindLogin, ev.Kind)
		assert.Equal(t, "u1", ev.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("login event was not relayed")
	}
}

func TestRedisBridge_LocalDeliveryOnce(t *testing.T) {
	mr := miniredis.RunT(t)
	a, busA := newBridge(t, mr.Addr())
	runBridge(t, a)

	ch, cancel := busA.Subscribe(nil)
	defer cancel()

	a.Publish(context.Background(), LoginOccurred("d1", nil))

	<-ch
	// The echo from Redis carries our own origin and is skipped
	select {
	case ev := <-ch:
		t.Fatalf("unexpected duplicate event %v", ev.Kind)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRedisBridge_NotificationsStayLocal(t *testing.T) {
	mr := miniredis.RunT(t)
	a, busA := newBridge(t, mr.Addr())
	b, busB := newBridge(t, mr.Addr())
	runBridge(t, b)

	chA, cancelA := busA.Subscribe(nil)
	defer cancelA()
	chB, cancelB := busB.Subscribe(nil)
	defer cancelB()

	a.Publish(context.Background(), Notification("d1", LevelError, "x"))

	require.Len(t, chA, 1)
	select {
	case ev := <-chB:
		t.Fatalf("notification leaked to another process: %v", ev.Kind)
	case <-time.After(200 * time.Millisecond):
	}
}
