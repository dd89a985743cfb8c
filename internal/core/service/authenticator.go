package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

// Authenticator verifies an email/password pair against the account's
// current credential state. It is read-only; callers decide what to do with
// the authenticated account.
type Authenticator struct {
	repo   ports.AccountRepository
	hasher ports.Hasher
	logger zerolog.Logger
}

func NewAuthenticator(repo ports.AccountRepository, hasher ports.Hasher, logger zerolog.Logger) *Authenticator {
	return &Authenticator{repo: repo, hasher: hasher, logger: logger}
}

// Verify authenticates the supplied secret. An unexpired temporary
// credential takes precedence over the permanent hash. The blocked check
// runs only after credential correctness, so blocked accounts cannot be
// used to probe for valid passwords.
func (a *Authenticator) Verify(ctx context.Context, email, password string) (*domain.Account, error) {
	// Soft-deleted accounts are loaded and rejected explicitly below so that
	// the caller sees the same invalid-credential error as for a wrong
	// password, never an existence hint.
	account, err := a.repo.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			a.logger.Debug().Str("email", email).Msg("account not found")
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if account.SoftDeleted {
		a.logger.Debug().Str("account_id", account.AccountID).Msg("account is soft deleted")
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()

	if account.TempCredential != nil {
		if account.TempCredential.Expired(now) {
			a.logger.Debug().Str("account_id", account.AccountID).Msg("temporary password has expired")
			return nil, domain.ErrInvalidCredentials
		}
		if !a.hasher.Verify(password, account.TempCredential.Hash) {
			a.logger.Debug().Str("account_id", account.AccountID).Msg("invalid temporary password")
			return nil, domain.ErrInvalidCredentials
		}
		return account, nil
	}

	if account.PasswordHash == "" {
		a.logger.Debug().Str("account_id", account.AccountID).Msg("account has no password set")
		return nil, domain.ErrInvalidCredentials
	}

	if !a.hasher.Verify(password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if account.Blocked(now) {
		a.logger.Debug().Str("account_id", account.AccountID).Time("blocked_until", *account.BlockedUntil).Msg("account is blocked")
		return nil, &domain.BlockedError{Until: *account.BlockedUntil}
	}

	return account, nil
}
