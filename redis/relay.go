package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"bloom-monitor/broadcast"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RelayChannel carries alert events between instances.
const RelayChannel = "bloom:alerts:events"

// Envelope is one relayed event.
type Envelope struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room,omitempty"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data"`
}

// Relay publishes local events to Redis and replays events published by other
// instances into the local hub.
type Relay struct {
	rc      *RedisClient
	origin  string
	channel string
	logger  *slog.Logger
}

func NewRelay(rc *RedisClient) *Relay {
	return &Relay{
		rc:      rc,
		origin:  uuid.NewString(),
		channel: RelayChannel,
		logger:  rc.logger.With("component", "redis_relay"),
	}
}

// Origin identifies this instance in relayed envelopes.
func (r *Relay) Origin() string {
	return r.origin
}

func (r *Relay) Emit(event string, payload any) error {
	return r.publish("", event, payload)
}

func (r *Relay) EmitToRoom(room, event string, payload any) error {
	return r.publish(room, event, payload)
}

func (r *Relay) publish(room, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", event, err)
	}
	msg, err := json.Marshal(Envelope{Origin: r.origin, Room: room, Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.rc.client.Publish(ctx, r.channel, msg).Err(); err != nil {
		return fmt.Errorf("failed to publish %s to Redis: %w", event, err)
	}
	return nil
}

// Run replays foreign envelopes into local until ctx is done.
func (r *Relay) Run(ctx context.Context, local broadcast.Emitter) error {
	sub := r.rc.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.logger.Info("Subscribed to relay channel", "channel", r.channel, "origin", r.origin)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.replay(msg, local)
		}
	}
}

func (r *Relay) replay(msg *redis.Message, local broadcast.Emitter) {
	var env Envelope
	if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
		r.logger.Warn("Dropping malformed relay message", slog.Any("error", err))
		return
	}
	if env.Origin == r.origin {
		return
	}

	var err error
	if env.Room != "" {
		err = local.EmitToRoom(env.Room, env.Event, env.Data)
	} else {
		err = local.Emit(env.Event, env.Data)
	}
	if err != nil {
		r.logger.Warn("Failed to replay relayed event", "event", env.Event, slog.Any("error", err))
	}
}
