package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

// AuthService implements the login, second-factor, refresh and logout flows.
type AuthService struct {
	authenticator *Authenticator
	issuer        *TokenIssuer
	loginOtp      *ChallengeFlow
	repo          ports.AccountRepository
	logger        zerolog.Logger
}

func NewAuthService(authenticator *Authenticator, issuer *TokenIssuer, loginOtp *ChallengeFlow, repo ports.AccountRepository, logger zerolog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		issuer:        issuer,
		loginOtp:      loginOtp,
		repo:          repo,
		logger:        logger,
	}
}

func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*ports.TokenPair, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.authenticator.Verify(ctx, email, password)
	if err != nil {
		s.logger.Info().Str("email", email).Msg("login failed")
		return nil, err
	}

	pair, err := s.issuer.IssueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("login successful")
	return pair, nil
}

func (s *AuthService) RequestLoginOtp(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return domain.ErrInvalidCredentials
	}

	account, err := s.authenticator.Verify(ctx, email, password)
	if err != nil {
		s.logger.Info().Str("email", email).Msg("login otp request failed")
		return err
	}

	if err := s.loginOtp.Issue(ctx, account.Email); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("login otp issued")
	return nil
}

func (s *AuthService) CompleteLoginOtp(ctx context.Context, email, code string) (*ports.TokenPair, error) {
	if err := s.loginOtp.VerifyAndConsume(ctx, email, code); err != nil {
		s.logger.Info().Str("email", email).Msg("login otp verification failed")
		return nil, err
	}

	account, err := s.repo.FindByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			s.logger.Error().Str("email", email).Msg("account vanished between otp issue and verification")
			return nil, domain.ErrInvalidChallenge
		}
		return nil, err
	}

	// A block placed while the code was in flight still wins: the code is
	// consumed but no session is minted.
	if account.Blocked(time.Now().UTC()) {
		s.logger.Info().Str("account_id", account.AccountID).Msg("login otp redeemed by blocked account")
		return nil, &domain.BlockedError{Until: *account.BlockedUntil}
	}

	pair, err := s.issuer.IssueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("login completed with otp")
	return pair, nil
}

func (s *AuthService) RefreshSession(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	if refreshToken == "" {
		return nil, domain.ErrSessionExpired
	}
	return s.issuer.Refresh(ctx, refreshToken)
}

// Logout revokes the account's refresh token. Revoking an absent token is
// not an error.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	account, err := s.repo.FindByEmail(ctx, email, false)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil
		}
		return err
	}

	if err := s.repo.RotateRefreshToken(ctx, account.AccountID, "", nil); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", account.AccountID).Msg("logout successful")
	return nil
}
