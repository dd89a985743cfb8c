package ports

import (
	"context"
	"time"

	"github.com/ensplatform/auth-service/internal/core/domain"
)

// SearchResult is one page of an admin account search.
type SearchResult struct {
	Accounts []domain.Account `json:"accounts"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
}

// AdminService owns all account mutations performed by one account on
// another. Every destructive or blocking operation is permission-guarded
// and rejects self-application.
type AdminService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*CreatedAccount, error)
	CreateAdmin(ctx context.Context, actor domain.AdminActor, email string, superAdmin bool) (*CreatedAccount, error)

	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, actor domain.AdminActor, targetID string, input UpdateProfileInput) (*domain.Account, error)
	Search(ctx context.Context, filter SearchFilter) (*SearchResult, error)

	Block(ctx context.Context, actor domain.AdminActor, targetID string, until time.Time) error
	Unblock(ctx context.Context, actor domain.AdminActor, targetID string) error
	SoftDelete(ctx context.Context, actor domain.AdminActor, targetID string) error
	HardDelete(ctx context.Context, actor domain.AdminActor, targetID string) error
}
