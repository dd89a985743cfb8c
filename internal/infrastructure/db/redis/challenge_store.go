package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeIfMatchScript deletes the key only when its value equals the
// supplied one. Running server-side makes verify-and-consume a single
// atomic operation: a second verifier can never see a consumed code.
var consumeIfMatchScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ChallengeStore keeps one-time codes in Redis with per-key TTLs. Expiry is
// enforced by Redis itself; an expired code simply stops existing.
type ChallengeStore struct {
	client *redis.Client
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client}
}

// Set stores a code under key for the given TTL, overwriting any previous
// code for the same key.
func (s *ChallengeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("challenge set: %w", err)
	}
	return nil
}

// ConsumeIfMatch atomically compares and deletes. Returns true only when
// the stored value matched and was removed.
func (s *ChallengeStore) ConsumeIfMatch(ctx context.Context, key, value string) (bool, error) {
	n, err := consumeIfMatchScript.Run(ctx, s.client, []string{key}, value).Int()
	if err != nil {
		return false, fmt.Errorf("challenge consume: %w", err)
	}
	return n == 1, nil
}
