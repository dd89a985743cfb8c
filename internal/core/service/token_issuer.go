package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

// JWT claim names shared with the auth middleware.
const (
	ClaimAccountID    = "account_id"
	ClaimRole         = "role"
	ClaimFirstName    = "first_name"
	ClaimIsSuperAdmin = "is_super_admin"
)

// TokenIssuer mints signed access tokens and rotates opaque refresh tokens.
type TokenIssuer struct {
	repo       ports.AccountRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     zerolog.Logger
}

func NewTokenIssuer(repo ports.AccountRepository, jwtSecret string, accessTTL, refreshTTL time.Duration, logger zerolog.Logger) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenIssuer{
		repo:       repo,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// GenerateAccessToken builds and signs the claim set for an account. The
// role sub-profile must exist; a missing one is a data-integrity failure,
// logged at error severity and surfaced as ErrProfileNotFound.
func (s *TokenIssuer) GenerateAccessToken(ctx context.Context, account *domain.Account) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":          account.Email,
		ClaimAccountID: account.AccountID,
		ClaimRole:      string(account.Role),
		ClaimFirstName: account.FirstName,
		"iat":          now.Unix(),
		"exp":          now.Add(s.accessTTL).Unix(),
	}

	switch account.Role {
	case domain.RoleUser:
		if _, err := s.repo.FindUserProfile(ctx, account.AccountID); err != nil {
			s.logger.Error().Err(err).Str("account_id", account.AccountID).Msg("user profile not found for account")
			return "", domain.ErrProfileNotFound
		}
	case domain.RoleAdmin:
		admin, err := s.repo.FindAdminProfile(ctx, account.AccountID)
		if err != nil {
			s.logger.Error().Err(err).Str("account_id", account.AccountID).Msg("admin profile not found for account")
			return "", domain.ErrProfileNotFound
		}
		claims[ClaimIsSuperAdmin] = admin.SuperAdmin
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// IssueTokens returns a fresh access token and unconditionally rotates the
// account's refresh token: any previous session token stops working.
func (s *TokenIssuer) IssueTokens(ctx context.Context, account *domain.Account) (*ports.TokenPair, error) {
	accessToken, err := s.GenerateAccessToken(ctx, account)
	if err != nil {
		return nil, err
	}

	next := &domain.RefreshToken{
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(s.refreshTTL),
	}
	if err := s.repo.RotateRefreshToken(ctx, account.AccountID, "", next); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("account_id", account.AccountID).Msg("token pair issued")

	return &ports.TokenPair{
		AccessToken:       accessToken,
		RefreshToken:      next.Token,
		ExpiresInS:        int64(s.accessTTL.Seconds()),
		RefreshExpiresInS: int64(s.refreshTTL.Seconds()),
	}, nil
}

// Refresh exchanges a refresh token for a new pair. The rotation is
// conditional on the stored token still matching the presented one, so of
// two concurrent refresh calls with the same token exactly one wins; the
// loser gets ErrSessionExpired.
func (s *TokenIssuer) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	account, err := s.repo.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrSessionExpired
		}
		return nil, err
	}

	now := time.Now().UTC()
	if account.RefreshToken == nil || account.RefreshToken.Expired(now) {
		s.logger.Debug().Str("account_id", account.AccountID).Msg("refresh token has expired")
		return nil, domain.ErrSessionExpired
	}

	// A session can be invalidated by an admin blocking the account after
	// the token was issued.
	if account.Blocked(now) {
		s.logger.Debug().Str("account_id", account.AccountID).Msg("account is blocked, refusing refresh")
		return nil, &domain.BlockedError{Until: *account.BlockedUntil}
	}

	accessToken, err := s.GenerateAccessToken(ctx, account)
	if err != nil {
		return nil, err
	}

	next := &domain.RefreshToken{
		Token:     uuid.NewString(),
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.repo.RotateRefreshToken(ctx, account.AccountID, refreshToken, next); err != nil {
		return nil, err
	}

	s.logger.Debug().Str("account_id", account.AccountID).Msg("session refreshed")

	return &ports.TokenPair{
		AccessToken:       accessToken,
		RefreshToken:      next.Token,
		ExpiresInS:        int64(s.accessTTL.Seconds()),
		RefreshExpiresInS: int64(s.refreshTTL.Seconds()),
	}, nil
}
