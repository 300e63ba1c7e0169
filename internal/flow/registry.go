package flow

import (
	"context"
	"sync"

	"github.com/prefeitura-rio/app-login/internal/events"
	"github.com/prefeitura-rio/app-login/internal/session"
)

// Registry keeps one Controller per device. Each controller gets its own
// slice of the session store, so a device that comes back resumes from its
// own persisted session.
type Registry struct {
	mu    sync.Mutex
	flows map[string]*Controller
	base  Options
	store *session.Store
}

// NewRegistry returns a registry building controllers from base. base.Store
// is the root store; DeviceID is filled per controller.
func NewRegistry(base Options) *Registry {
	return &Registry{
		flows: make(map[string]*Controller),
		base:  base,
		store: base.Store,
	}
}

// Open opens the flow for deviceID, creating its controller when needed.
// Controllers are only created here, so devices that never open a flow
// leave nothing behind.
func (r *Registry) Open(ctx context.Context, deviceID string) (*Controller, error) {
	for {
		c := r.getOrCreate(deviceID)
		if err := c.Open(ctx); err != nil {
			r.discard(c)
			return nil, err
		}

		if r.adopt(c) == c {
			return c, nil
		}
		c.Close()
	}
}

// adopt puts an opened controller back in the map when the grace teardown
// dropped it between getOrCreate and Open. It returns the controller that
// owns the device slot.
func (r *Registry) adopt(c *Controller) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.flows[c.DeviceID()]; ok {
		return cur
	}
	r.flows[c.DeviceID()] = c
	return c
}

func (r *Registry) getOrCreate(deviceID string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.flows[deviceID]; ok {
		return c
	}
	c := r.newController(deviceID)
	c.onDiscard = r.discard
	r.flows[deviceID] = c
	return c
}

func (r *Registry) newController(deviceID string) *Controller {
	opts := r.base
	opts.DeviceID = deviceID
	opts.Store = r.store.ForDevice(deviceID)
	return NewController(opts)
}

// Lookup returns the controller for deviceID without creating one.
func (r *Registry) Lookup(deviceID string) (*Controller, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.flows[deviceID]
	return c, ok
}

// Snapshot returns the flow of deviceID, or the closed default flow when
// the device has no controller.
func (r *Registry) Snapshot(deviceID string) Snapshot {
	if c, ok := r.Lookup(deviceID); ok {
		return c.Snapshot()
	}
	return r.newController(deviceID).Snapshot()
}

// Store returns the session store scoped to deviceID.
func (r *Registry) Store(deviceID string) *session.Store {
	return r.store.ForDevice(deviceID)
}

// Events returns the publisher controllers report to.
func (r *Registry) Events() events.Publisher {
	return r.base.Events
}

func (r *Registry) discard(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.flows[c.DeviceID()]; ok && cur == c && !c.IsOpen() {
		delete(r.flows, c.DeviceID())
	}
}

// Len returns the number of tracked controllers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// Shutdown closes every controller and waits for background work.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	flows := make([]*Controller, 0, len(r.flows))
	for _, c := range r.flows {
		flows = append(flows, c)
	}
	r.mu.Unlock()

	for _, c := range flows {
		c.Close()
	}

	done := make(chan struct{})
	go func() {
		for _, c := range flows {
			c.Wait()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
