package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

// Challenge key prefixes and notification subjects per purpose.
const (
	PurposeLoginOtp      = "login_otp:"
	PurposePasswordReset = "password_reset_otp:"
	PurposeEmailChange   = "email_change:"

	SubjectLoginOtp      = "2FA Verification Code"
	SubjectPasswordReset = "Password reset"
	SubjectEmailChange   = "Email change"
)

// ChallengeFlow is the generic one-time-code flow: generate, store with a
// TTL, deliver via the notifier, then verify-and-consume. One instance per
// purpose (login 2FA, password reset, email change).
type ChallengeFlow struct {
	store    ports.ChallengeStore
	notifier ports.Notifier
	prefix   string
	subject  string
	ttl      time.Duration
	logger   zerolog.Logger
}

func NewChallengeFlow(store ports.ChallengeStore, notifier ports.Notifier, prefix, subject string, ttl time.Duration, logger zerolog.Logger) *ChallengeFlow {
	return &ChallengeFlow{
		store:    store,
		notifier: notifier,
		prefix:   prefix,
		subject:  subject,
		ttl:      ttl,
		logger:   logger,
	}
}

// Issue generates a code, stores it under the purpose-prefixed key and
// hands it to the notifier. The code never travels back to the caller.
// Re-issuing overwrites any previous code for the same destination.
func (f *ChallengeFlow) Issue(ctx context.Context, destination string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	if err := f.store.Set(ctx, f.prefix+destination, code, f.ttl); err != nil {
		return fmt.Errorf("store challenge: %w", err)
	}
	f.logger.Debug().Str("destination", destination).Str("purpose", f.subject).Msg("challenge code stored")

	if err := f.notifier.Deliver(ctx, destination, f.subject, code); err != nil {
		f.logger.Error().Err(err).Str("destination", destination).Str("purpose", f.subject).Msg("failed to deliver challenge code")
		return fmt.Errorf("%w: %v", domain.ErrDeliveryFailure, err)
	}

	f.logger.Info().Str("destination", destination).Str("purpose", f.subject).Msg("challenge code sent")
	return nil
}

// VerifyAndConsume checks the supplied code and deletes it in the same
// store-level operation, so a verified code can never be used twice.
// Missing, expired and mismatched codes all fail identically.
func (f *ChallengeFlow) VerifyAndConsume(ctx context.Context, destination, code string) error {
	if code == "" {
		return domain.ErrInvalidChallenge
	}

	ok, err := f.store.ConsumeIfMatch(ctx, f.prefix+destination, code)
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}
	if !ok {
		f.logger.Debug().Str("destination", destination).Str("purpose", f.subject).Msg("challenge code invalid or expired")
		return domain.ErrInvalidChallenge
	}

	f.logger.Debug().Str("destination", destination).Str("purpose", f.subject).Msg("challenge code consumed")
	return nil
}
