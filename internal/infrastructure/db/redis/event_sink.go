package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// EventSink publishes platform events on Redis pub/sub channels. Delivery
// is fire-and-forget: subscribers that are offline miss the message, which
// is acceptable for best-effort deletion notices.
type EventSink struct {
	client *redis.Client
}

func NewEventSink(client *redis.Client) *EventSink {
	return &EventSink{client: client}
}

func (s *EventSink) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := s.client.Publish(ctx, topic, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
