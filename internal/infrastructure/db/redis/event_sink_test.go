package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestEventSink_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sub := client.Subscribe(context.Background(), "account-deletion-events")
	t.Cleanup(func() { _ = sub.Close() })
	// Wait for the subscription to be established before publishing.
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	sink := NewEventSink(client)
	payload := map[string]string{"account_id": "acc-1"}
	require.NoError(t, sink.Publish(context.Background(), "account-deletion-events", payload))

	select {
	case msg := <-sub.Channel():
		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		require.Equal(t, "acc-1", got["account_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestEventSink_Publish_UnmarshalablePayload(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	sink := NewEventSink(client)
	require.Error(t, sink.Publish(context.Background(), "topic", make(chan int)))
}
