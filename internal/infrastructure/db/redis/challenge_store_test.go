package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*ChallengeStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewChallengeStore(client), mr
}

func TestChallengeStore_SetAndConsume(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "login_otp:alice@example.com", "123456", 5*time.Minute))

	ok, err := store.ConsumeIfMatch(ctx, "login_otp:alice@example.com", "123456")
	require.NoError(t, err)
	require.True(t, ok)

	// Consumed means gone.
	ok, err = store.ConsumeIfMatch(ctx, "login_otp:alice@example.com", "123456")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestChallengeStore_ConsumeIfMatch_WrongValueKeepsKey(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "login_otp:alice@example.com", "123456", 5*time.Minute))

	ok, err := store.ConsumeIfMatch(ctx, "login_otp:alice@example.com", "654321")
	require.NoError(t, err)
	require.False(t, ok)

	// The stored code survives a mismatched attempt.
	ok, err = store.ConsumeIfMatch(ctx, "login_otp:alice@example.com", "123456")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestChallengeStore_ConsumeIfMatch_MissingKey(t *testing.T) {
	store, _ := newTestStore(t)

	ok, err := store.ConsumeIfMatch(context.Background(), "login_otp:ghost@example.com", "123456")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestChallengeStore_TTLExpiry(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "password_reset_otp:alice@example.com", "123456", time.Minute))

	mr.FastForward(2 * time.Minute)

	ok, err := store.ConsumeIfMatch(ctx, "password_reset_otp:alice@example.com", "123456")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestChallengeStore_SetOverwrites(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "login_otp:alice@example.com", "111111", time.Minute))
	require.NoError(t, store.Set(ctx, "login_otp:alice@example.com", "222222", time.Minute))

	ok, err := store.ConsumeIfMatch(ctx, "login_otp:alice@example.com", "111111")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.ConsumeIfMatch(ctx, "login_otp:alice@example.com", "222222")
	require.NoError(t, err)
	require.True(t, ok)
}
