package ports

import (
	"context"

	"github.com/ensplatform/auth-service/internal/core/domain"
)

// RegisterInput carries a self-service registration.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// CreateUserInput carries an admin-created user account. No password is
// supplied; a temporary credential is issued instead.
type CreateUserInput struct {
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// UpdateProfileInput updates mutable profile fields. Nil means unchanged.
type UpdateProfileInput struct {
	FirstName   *string
	LastName    *string
	PhoneNumber *string
}

// CreatedAccount reports a provisioned account. TempPassword is set only
// when the account was bootstrapped with a temporary credential; it is
// returned exactly once and never stored in plain text.
type CreatedAccount struct {
	Account              *domain.Account
	TempPassword         string
	TempPasswordTTLHours int
}

type AccountService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.Account, error)
	// CreateSocialAccount provisions an account with neither a permanent nor
	// a temporary credential; password login on it always fails.
	CreateSocialAccount(ctx context.Context, email, firstName, lastName string) (*domain.Account, error)

	GetProfile(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateProfile(ctx context.Context, accountID string, input UpdateProfileInput) (*domain.Account, error)

	ChangePassword(ctx context.Context, email, currentPassword, newPassword string) error

	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, email, code, newPassword string) error

	RequestEmailChange(ctx context.Context, currentEmail, newEmail string) error
	ConfirmEmailChange(ctx context.Context, currentEmail, newEmail, code string) error
}
