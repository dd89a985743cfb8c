package ports

import "context"

// Hasher is the one-way secret hashing primitive. The algorithm behind it is
// deliberately not part of the core's design.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// Notifier delivers a one-time code to its destination (email address).
// A delivery failure must surface as an error, never as a silent drop.
type Notifier interface {
	Deliver(ctx context.Context, destination, purpose, code string) error
}

// EventSink publishes fire-and-forget platform events (account deletion
// notices). Best effort: callers do not fail their own operation when
// publishing fails.
type EventSink interface {
	Publish(ctx context.Context, topic string, payload any) error
}
