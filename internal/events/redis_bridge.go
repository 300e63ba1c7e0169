package events

import (
	"context"
	"encoding/json"

	"github.com/prefeitura-rio/app-login/internal/logging"
	"github.com/prefeitura-rio/app-login/internal/redisclient"
	"github.com/prefeitura-rio/app-login/internal/utils"
	"go.uber.org/zap"
)

// RedisBridge publishes broadcast events to a Redis channel and replays
// events from other processes onto the local bus.
type RedisBridge struct {
	client  *redisclient.Client
	channel string
	bus     *Bus
	origin  string
}

// NewRedisBridge returns a bridge between bus and the Redis channel.
func NewRedisBridge(client *redisclient.Client, channel string, bus *Bus) *RedisBridge {
	return &RedisBridge{
		client:  client,
		channel: channel,
		bus:     bus,
		origin:  utils.GenerateUUID(),
	}
}

// Publish delivers ev locally and, for broadcast kinds, to Redis.
func (r *RedisBridge) Publish(ctx context.Context, ev Event) {
	r.bus.Publish(ctx, ev)
	if !ev.Broadcast() {
		return
	}

	ev.Origin = r.origin
	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Logger.Error("failed to encode event", zap.Error(err))
		return
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		logging.Logger.Warn("failed to publish event to redis",
			zap.String("channel", r.channel),
			zap.String("kind", string(ev.Kind)),
			zap.Error(err))
	}
}

// Run relays remote events to the local bus until ctx is done. ready, when
// non-nil, is closed once the subscription is confirmed.
func (r *RedisBridge) Run(ctx context.Context, ready chan<- struct{}) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}
	logging.Logger.Info("listening for session events", zap.String("channel", r.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logging.Logger.Warn("ignoring malformed event", zap.Error(err))
				continue
			}
			if ev.Origin == r.origin {
				continue
			}
			r.bus.Publish(ctx, ev)
		}
	}
}
