// Package timer implements the countdown that gates OTP resends.
package timer

import (
	"sync"
	"time"
)

// Ticker abstracts time.Ticker so tests can drive the countdown.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewRealTicker returns a Ticker backed by time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// ResendTimer counts whole seconds down from a fixed window. It ticks on its
// own goroutine between Start and Stop and calls onTick after every change.
type ResendTimer struct {
	mu        sync.Mutex
	window    int
	remaining int
	stop      chan struct{}
	done      chan struct{}
	newTicker func(time.Duration) Ticker
	onTick    func(remaining int)
}

// Option customizes a ResendTimer.
type Option func(*ResendTimer)

// WithTicker replaces the ticker factory.
func WithTicker(f func(time.Duration) Ticker) Option {
	return func(t *ResendTimer) { t.newTicker = f }
}

// WithOnTick registers a callback invoked, without the timer lock held,
// after each second elapses.
func WithOnTick(f func(remaining int)) Option {
	return func(t *ResendTimer) { t.onTick = f }
}

// NewResendTimer returns a stopped timer with the given window.
func NewResendTimer(window time.Duration, opts ...Option) *ResendTimer {
	secs := int(window / time.Second)
	if secs < 1 {
		secs = 1
	}
	t := &ResendTimer{window: secs, newTicker: NewRealTicker}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Window returns the full countdown length in seconds.
func (t *ResendTimer) Window() int {
	return t.window
}

// Start resets the countdown to the full window and begins ticking. A running
// countdown is restarted.
func (t *ResendTimer) Start() {
	t.Stop()

	t.mu.Lock()
	t.remaining = t.window
	stop := make(chan struct{})
	done := make(chan struct{})
	t.stop = stop
	t.done = done
	ticker := t.newTicker(time.Second)
	t.mu.Unlock()

	go t.run(ticker, stop, done)
}

func (t *ResendTimer) run(ticker Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			remaining, changed := t.Tick()
			if changed && t.onTick != nil {
				t.onTick(remaining)
			}
			if remaining == 0 {
				return
			}
		}
	}
}

// Tick advances the countdown by one second. It reports the new value and
// whether it changed.
func (t *ResendTimer) Tick() (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.remaining == 0 {
		return 0, false
	}
	t.remaining--
	return t.remaining, true
}

// Stop halts ticking and waits for the goroutine to exit. The remaining
// value is kept.
func (t *ResendTimer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

// Reset stops the timer and zeroes the countdown.
func (t *ResendTimer) Reset() {
	t.Stop()

	t.mu.Lock()
	t.remaining = 0
	t.mu.Unlock()
}

// Remaining returns the seconds left before resend is allowed.
func (t *ResendTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// CanResend reports whether the countdown has reached zero.
func (t *ResendTimer) CanResend() bool {
	return t.Remaining() == 0
}

// Running reports whether the countdown goroutine is active.
func (t *ResendTimer) Running() bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
