package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/umichkisa/pocha-backend/internal/websocket"
	"github.com/umichkisa/pocha-backend/pkg/logger"
)

const publishTimeout = 3 * time.Second

// Publisher delivers an encoded frame to local sockets
type Publisher interface {
	Publish(event string, frame []byte)
}

// EncodeFrame builds the {event, data} frame sent to sockets
func EncodeFrame(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(websocket.Envelope{Event: event, Data: data})
}

// RedisEmitter publishes events on a Redis channel so every instance's
// Relay forwards them to its own sockets.
type RedisEmitter struct {
	client  *redis.Client
	channel string
}

func NewRedisEmitter(client *redis.Client, channel string) *RedisEmitter {
	return &RedisEmitter{client: client, channel: channel}
}

func (e *RedisEmitter) Emit(event string, payload interface{}) error {
	frame, err := EncodeFrame(event, payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := e.client.Publish(ctx, e.channel, frame).Err(); err != nil {
		logger.Error("Failed to publish event", err, map[string]interface{}{
			"event":   event,
			"channel": e.channel,
		})
		return err
	}

	logger.Debug("Event published", map[string]interface{}{
		"event":   event,
		"channel": e.channel,
	})
	return nil
}

// Relay subscribes to the channel and forwards frames to the local hub
type Relay struct {
	client  *redis.Client
	channel string
	hub     Publisher
}

func NewRelay(client *redis.Client, channel string, hub Publisher) *Relay {
	return &Relay{client: client, channel: channel, hub: hub}
}

// Run blocks until ctx is cancelled
func (r *Relay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	logger.Info("Realtime relay subscribed", map[string]interface{}{
		"channel": r.channel,
	})

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("realtime relay: subscription closed")
			}
			r.forward(msg.Payload)
		}
	}
}

func (r *Relay) forward(payload string) {
	var env websocket.Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil || env.Event == "" {
		logger.Warn("Dropping malformed realtime frame", map[string]interface{}{
			"channel": r.channel,
		})
		return
	}
	r.hub.Publish(env.Event, []byte(payload))
}
