package live

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the redis pub/sub channel carrying grievance change events
// between instances.
const Channel = "grievance_events"

// Relay bridges change events between instances through redis pub/sub, so a
// WebSocket subscriber on one instance sees mutations made on another. With a
// nil redis client the relay is inert and the hub stays instance-local.
type Relay struct {
	hub      *Hub
	redis    *redis.Client
	instance string
}

func NewRelay(hub *Hub, redisClient *redis.Client) *Relay {
	return &Relay{
		hub:      hub,
		redis:    redisClient,
		instance: uuid.NewString(),
	}
}

// Publish applies the event to the local hub and, when redis is configured,
// forwards it to the other instances.
func (r *Relay) Publish(ctx context.Context, evt Event) {
	evt.Origin = r.instance
	r.hub.Apply(evt)

	if r.redis == nil {
		return
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("failed to marshal change event: %v", err)
		return
	}
	if err := r.redis.Publish(ctx, Channel, payload).Err(); err != nil {
		log.Printf("failed to publish change event to redis: %v", err)
	}
}

// Start subscribes to the redis channel and applies remote events to the
// local hub until ctx ends. Events originating from this instance were
// already applied by Publish and are skipped.
func (r *Relay) Start(ctx context.Context) {
	if r.redis == nil {
		return
	}

	pubsub := r.redis.Subscribe(ctx, Channel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					log.Printf("failed to decode change event: %v", err)
					continue
				}
				if evt.Origin == r.instance {
					continue
				}
				r.hub.Apply(evt)
			}
		}
	}()
}
