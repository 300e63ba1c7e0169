package events

import (
	"context"
	"sync"

	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/observability"
	"go.uber.org/zap"
)

// Publisher accepts events for delivery.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Filter selects which events a subscriber receives. A nil Filter accepts all.
type Filter func(Event) bool

// ForDevice accepts events addressed to deviceID plus broadcast events.
func ForDevice(deviceID string) Filter {
	return func(ev Event) bool {
		return ev.DeviceID == deviceID || ev.Broadcast()
	}
}

type subscription struct {
	ch     chan Event
	filter Filter
}

// Bus is an in-process fan-out of events. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Bus struct {
	mu      sync.RWMutex
	subs    map[int]*subscription
	next    int
	bufSize int
}

// NewBus returns a bus giving each subscriber a buffer of bufSize events.
func NewBus(bufSize int) *Bus {
	if bufSize < 1 {
		bufSize = 1
	}
	return &Bus{subs: make(map[int]*subscription), bufSize: bufSize}
}

// Subscribe registers a subscriber. The returned cancel func unregisters it
// and closes the channel; it is safe to call more than once.
func (b *Bus) Subscribe(filter Filter) (<-chan Event, func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	sub := &subscription{ch: make(chan Event, b.bufSize), filter: filter}
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers ev to every matching subscriber.
func (b *Bus) Publish(_ context.Context, ev Event) {
	if ev.Broadcast() {
		observability.LoginEvents.WithLabelValues(string(ev.Kind)).Inc()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.filter != nil && !sub.filter(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			logging.Logger.Debug("dropping event for slow subscriber",
				zap.String("kind", string(ev.Kind)),
				zap.String("device_id", ev.DeviceID))
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
