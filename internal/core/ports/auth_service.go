package ports

import "context"

// TokenPair is the result of every successful authentication path.
type TokenPair struct {
	AccessToken       string `json:"access_token"`
	RefreshToken      string `json:"refresh_token"`
	ExpiresInS        int64  `json:"expires_in_s"`
	RefreshExpiresInS int64  `json:"refresh_expires_in_s"`
}

type AuthService interface {
	// Authenticate verifies the first factor and issues a token pair.
	Authenticate(ctx context.Context, email, password string) (*TokenPair, error)
	// RequestLoginOtp verifies the first factor and sends a login code
	// instead of issuing tokens. The code is never returned to the caller.
	RequestLoginOtp(ctx context.Context, email, password string) error
	// CompleteLoginOtp exchanges a valid login code for the token pair
	// Authenticate would have produced.
	CompleteLoginOtp(ctx context.Context, email, code string) (*TokenPair, error)
	// RefreshSession exchanges a refresh token for a new pair, rotating the
	// refresh token.
	RefreshSession(ctx context.Context, refreshToken string) (*TokenPair, error)
	// Logout revokes the account's refresh token. Idempotent.
	Logout(ctx context.Context, email string) error
}
