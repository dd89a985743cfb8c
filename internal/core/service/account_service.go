package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

// AccountService owns account provisioning and the self-service credential
// flows: password change, password reset and email change.
type AccountService struct {
	repo            ports.AccountRepository
	hasher          ports.Hasher
	authenticator   *Authenticator
	resetFlow       *ChallengeFlow
	emailChangeFlow *ChallengeFlow
	tempPasswordTTL time.Duration
	logger          zerolog.Logger
}

func NewAccountService(
	repo ports.AccountRepository,
	hasher ports.Hasher,
	authenticator *Authenticator,
	resetFlow, emailChangeFlow *ChallengeFlow,
	tempPasswordTTL time.Duration,
	logger zerolog.Logger,
) *AccountService {
	if tempPasswordTTL <= 0 {
		tempPasswordTTL = 24 * time.Hour
	}
	return &AccountService{
		repo:            repo,
		hasher:          hasher,
		authenticator:   authenticator,
		resetFlow:       resetFlow,
		emailChangeFlow: emailChangeFlow,
		tempPasswordTTL: tempPasswordTTL,
		logger:          logger,
	}
}

// Register creates an active account with a user-chosen password.
func (s *AccountService) Register(ctx context.Context, input ports.RegisterInput) (*domain.Account, error) {
	created, err := s.createAccount(ctx, input.Email, input.Password, domain.RoleUser, input.FirstName, input.LastName, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUserProfile(ctx, &domain.UserProfile{AccountID: created.Account.AccountID}); err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", created.Account.AccountID).Msg("user registered")
	return created.Account, nil
}

// CreateSocialAccount provisions an account without any credential; only
// the social identity provider can authenticate it.
func (s *AccountService) CreateSocialAccount(ctx context.Context, email, firstName, lastName string) (*domain.Account, error) {
	if err := s.validateEmailNotRegistered(ctx, email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		AccountID: uuid.NewString(),
		Email:     email,
		Role:      domain.RoleUser,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUserProfile(ctx, &domain.UserProfile{AccountID: account.AccountID}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("social account created")
	return account, nil
}

func (s *AccountService) GetProfile(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByAccountID(ctx, accountID, false)
}

func (s *AccountService) UpdateProfile(ctx context.Context, accountID string, input ports.UpdateProfileInput) (*domain.Account, error) {
	account, err := s.repo.FindByAccountID(ctx, accountID, false)
	if err != nil {
		return nil, err
	}

	applyProfileUpdate(account, input)
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("profile updated")
	return account, nil
}

// ChangePassword re-verifies the current secret (temporary or permanent),
// then installs the new permanent hash, destroys any temporary credential
// and revokes the refresh token in a single account write.
func (s *AccountService) ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error {
	account, err := s.authenticator.Verify(ctx, email, currentPassword)
	if err != nil {
		return err
	}

	if currentPassword == newPassword {
		return domain.ErrSamePassword
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	account.PasswordHash = hash
	account.TempCredential = nil
	account.RefreshToken = nil
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, account); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("password changed")
	return nil
}

// RequestPasswordReset issues a reset code to a known email. Unlike login,
// this flow is existence-revealing by design: an unknown email is NotFound.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	if _, err := s.repo.FindByEmail(ctx, email, false); err != nil {
		return err
	}
	return s.resetFlow.Issue(ctx, email)
}

// ConfirmPasswordReset exchanges a valid reset code for a new permanent
// password, replacing whichever credential was authoritative and revoking
// the refresh token. The account is resolved before the code is consumed so
// the consume cannot succeed against an unknown account.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error {
	account, err := s.repo.FindByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidChallenge
		}
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.resetFlow.VerifyAndConsume(ctx, email, code); err != nil {
		return err
	}

	account.PasswordHash = hash
	account.TempCredential = nil
	account.RefreshToken = nil
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, account); err != nil {
		// The code is already consumed; the caller must restart the flow.
		s.logger.Error().Err(err).Str("account_id", account.AccountID).Msg("password reset failed after code consumption")
		return err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("password reset completed")
	return nil
}

// RequestEmailChange sends a code to the new address, proving control of
// the inbox being switched to.
func (s *AccountService) RequestEmailChange(ctx context.Context, currentEmail, newEmail string) error {
	if currentEmail == newEmail {
		return domain.ErrSameEmail
	}
	if err := s.validateEmailNotRegistered(ctx, newEmail); err != nil {
		return err
	}
	return s.emailChangeFlow.Issue(ctx, newEmail)
}

// ConfirmEmailChange updates the account's email and revokes its refresh
// token in one account write, forcing a re-login.
func (s *AccountService) ConfirmEmailChange(ctx context.Context, currentEmail, newEmail, code string) error {
	// Re-checked here: another account may have claimed the address between
	// request and confirmation.
	if err := s.validateEmailNotRegistered(ctx, newEmail); err != nil {
		return err
	}

	account, err := s.repo.FindByEmail(ctx, currentEmail, false)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return domain.ErrInvalidChallenge
		}
		return err
	}

	if err := s.emailChangeFlow.VerifyAndConsume(ctx, newEmail, code); err != nil {
		return err
	}

	account.Email = newEmail
	account.RefreshToken = nil
	account.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, account); err != nil {
		s.logger.Error().Err(err).Str("account_id", account.AccountID).Msg("email change failed after code consumption")
		return err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("email changed")
	return nil
}

// createAccount provisions the aggregate. An empty password bootstraps a
// temporary credential instead of a permanent hash; the generated plaintext
// is returned exactly once for out-of-band delivery.
func (s *AccountService) createAccount(ctx context.Context, email, password string, role domain.Role, firstName, lastName, phoneNumber string) (*ports.CreatedAccount, error) {
	if err := s.validateEmailNotRegistered(ctx, email); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		AccountID:   uuid.NewString(),
		Email:       email,
		Role:        role,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: phoneNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created := &ports.CreatedAccount{Account: account}

	if password == "" {
		tempPassword, err := GenerateTempPassword()
		if err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(tempPassword)
		if err != nil {
			return nil, err
		}
		account.TempCredential = &domain.TemporaryCredential{
			Hash:      hash,
			ExpiresAt: now.Add(s.tempPasswordTTL),
		}
		created.TempPassword = tempPassword
		created.TempPasswordTTLHours = int(s.tempPasswordTTL.Hours())
	} else {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.AccountID).Str("role", string(role)).Msg("account created")
	return created, nil
}

func (s *AccountService) validateEmailNotRegistered(ctx context.Context, email string) error {
	_, err := s.repo.FindByEmail(ctx, email, true)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, email)
	case errors.Is(err, domain.ErrAccountNotFound):
		return nil
	default:
		return err
	}
}

func applyProfileUpdate(account *domain.Account, input ports.UpdateProfileInput) {
	if input.FirstName != nil {
		account.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		account.LastName = *input.LastName
	}
	if input.PhoneNumber != nil {
		account.PhoneNumber = *input.PhoneNumber
	}
}
