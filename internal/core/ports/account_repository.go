package ports

import (
	"context"

	"github.com/ensplatform/auth-service/internal/core/domain"
)

// SearchFilter narrows an admin account search. Deleted accounts are only
// visible when IncludeDeleted is set explicitly. Page is 1-based: page 1
// holds the newest accounts.
type SearchFilter struct {
	Text           string
	Admins         bool
	Users          bool
	Blocked        bool
	IncludeDeleted bool
	Page           int
	Size           int
}

// AccountRepository persists the Account aggregate, including its embedded
// temporary credential and refresh token, plus the role sub-profiles.
//
// Lookups exclude soft-deleted accounts unless includeDeleted is true; paths
// that must see deleted rows (credential verification, hard delete, search)
// opt in explicitly.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Save(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, accountID string) error

	FindByEmail(ctx context.Context, email string, includeDeleted bool) (*domain.Account, error)
	FindByAccountID(ctx context.Context, accountID string, includeDeleted bool) (*domain.Account, error)
	FindByRefreshToken(ctx context.Context, token string) (*domain.Account, error)

	// RotateRefreshToken atomically replaces the account's refresh token;
	// a nil next clears it. When previous is non-empty the stored token must
	// still equal it or the rotation fails with domain.ErrSessionExpired
	// (compare-and-swap; keeps two concurrent refresh calls from both
	// succeeding).
	RotateRefreshToken(ctx context.Context, accountID, previous string, next *domain.RefreshToken) error

	Search(ctx context.Context, filter SearchFilter) ([]domain.Account, int64, error)

	CreateAdminProfile(ctx context.Context, profile *domain.AdminProfile) error
	CreateUserProfile(ctx context.Context, profile *domain.UserProfile) error
	FindAdminProfile(ctx context.Context, accountID string) (*domain.AdminProfile, error)
	FindUserProfile(ctx context.Context, accountID string) (*domain.UserProfile, error)
}
