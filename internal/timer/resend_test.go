package timer

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// manualClock hands out tickers the test fires by hand.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (c *manualClock) factory(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	tk := &manualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, tk)
	return tk
}

func (c *manualClock) current() *manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

func (c *manualClock) fire(t *testing.T, n int) {
	t.Helper()
	tk := c.current()
	for i := 0; i < n; i++ {
		select {
		case tk.ch <- time.Now():
		case <-time.After(time.Second):
			t.Fatalf("ticker not consumed at tick %d", i)
		}
	}
}

func newManualTimer(window time.Duration, ticks chan int) (*ResendTimer, *manualClock) {
	clock := &manualClock{}
	opts := []Option{WithTicker(clock.factory)}
	if ticks != nil {
		opts = append(opts, WithOnTick(func(r int) { ticks <- r }))
	}
	return NewResendTimer(window, opts...), clock
}

func TestResendTimer_StartsAtFullWindow(t *testing.T) {
	rt, _ := newManualTimer(60*time.Second, nil)
	assert.Equal(t, 0, rt.Remaining())
	assert.True(t, rt.CanResend())

	rt.Start()
	defer rt.Stop()

	assert.Equal(t, 60, rt.Remaining())
	assert.False(t, rt.CanResend())
	assert.True(t, rt.Running())
}

func TestResendTimer_CountsDown(t *testing.T) {
	ticks := make(chan int, 10)
	rt, clock := newManualTimer(3*time.Second, ticks)

	rt.Start()
	clock.fire(t, 2)
	assert.Equal(t, 2, <-ticks)
	assert.Equal(t, 1, <-ticks)
	assert.False(t, rt.CanResend())

	clock.fire(t, 1)
	assert.Equal(t, 0, <-ticks)
	assert.True(t, rt.CanResend())

	// The goroutine exits once it reaches zero
	require.Eventually(t, func() bool { return !rt.Running() }, time.Second, 5*time.Millisecond)
	rt.Stop()
	assert.Equal(t, 0, rt.Remaining())
}

func TestResendTimer_RestartResetsWindow(t *testing.T) {
	ticks := make(chan int, 10)
	rt, clock := newManualTimer(5*time.Second, ticks)

	rt.Start()
	clock.fire(t, 2)
	<-ticks
	<-ticks
	assert.Equal(t, 3, rt.Remaining())

	rt.Start()
	defer rt.Stop()
	assert.Equal(t, 5, rt.Remaining())
	assert.Len(t, clock.tickers, 2)
	assert.True(t, clock.tickers[0].stopped)
}

func TestResendTimer_StopKeepsRemaining(t *testing.T) {
	ticks := make(chan int, 10)
	rt, clock := newManualTimer(5*time.Second, ticks)

	rt.Start()
	clock.fire(t, 1)
	<-ticks

	rt.Stop()
	assert.False(t, rt.Running())
	assert.Equal(t, 4, rt.Remaining())

	// Stop is idempotent
	rt.Stop()
}

func TestResendTimer_Reset(t *testing.T) {
	rt, _ := newManualTimer(5*time.Second, nil)

	rt.Start()
	rt.Reset()

	assert.False(t, rt.Running())
	assert.Equal(t, 0, rt.Remaining())
	assert.True(t, rt.CanResend())
}

func TestResendTimer_TickAtZero(t *testing.T) {
	rt := NewResendTimer(time.Second)

	remaining, changed := rt.Tick()
	assert.Equal(t, 0, remaining)
	assert.False(t, changed)
}

func TestNewResendTimer_MinimumWindow(t *testing.T) {
	assert.Equal(t, 1, NewResendTimer(10*time.Millisecond).Window())
	assert.Equal(t, 60, NewResendTimer(time.Minute).Window())
}

func TestResendTimer_RealTicker(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping wall-clock test in short mode")
	}
	rt := NewResendTimer(time.Second)
	rt.Start()
	defer rt.Stop()

	require.Eventually(t, rt.CanResend, 3*time.Second, 50*time.Millisecond)
}
