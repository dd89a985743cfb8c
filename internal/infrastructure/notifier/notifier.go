// Package notifier delivers one-time codes to their destination. The
// production transport (an email gateway) lives outside this service; this
// package ships the development implementation that writes deliveries to
// the log instead of sending them.
package notifier

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier satisfies ports.Notifier by logging every delivery. Useful in
// development and in tests; never use it where real codes must stay secret.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Deliver(_ context.Context, destination, purpose, code string) error {
	n.logger.Info().
		Str("destination", destination).
		Str("purpose", purpose).
		Str("code", code).
		Msg("verification code delivery")
	return nil
}
