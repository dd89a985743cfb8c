package ports

import (
	"context"
	"time"
)

// ChallengeStore is a key-value store with per-key TTL backing one-time
// codes. ConsumeIfMatch must be atomic at the store level: once a code has
// been verified no second verification may observe it as still valid.
type ChallengeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// ConsumeIfMatch deletes the key and returns true when the stored value
	// equals the supplied one. A missing, expired or mismatched value
	// returns false; only the matching value is consumed.
	ConsumeIfMatch(ctx context.Context, key, value string) (bool, error)
}
