package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

// TopicAccountDeletion is the event topic for hard-delete notices.
const TopicAccountDeletion = "account-deletion-events"

// AccountDeletionEvent is the payload published when an account row is
// removed for good.
type AccountDeletionEvent struct {
	AccountID string    `json:"account_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// AdminService owns admin-initiated account provisioning and the guarded
// lifecycle mutations (block, unblock, soft delete, hard delete).
type AdminService struct {
	repo     ports.AccountRepository
	accounts *AccountService
	sink     ports.EventSink
	logger   zerolog.Logger
}

func NewAdminService(repo ports.AccountRepository, accounts *AccountService, sink ports.EventSink, logger zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, accounts: accounts, sink: sink, logger: logger}
}

// CreateUser provisions a plain user with a temporary credential.
func (s *AdminService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*ports.CreatedAccount, error) {
	created, err := s.accounts.createAccount(ctx, input.Email, "", domain.RoleUser, input.FirstName, input.LastName, input.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateUserProfile(ctx, &domain.UserProfile{AccountID: created.Account.AccountID}); err != nil {
		return nil, err
	}
	s.logger.Info().Str("account_id", created.Account.AccountID).Msg("user created by admin")
	return created, nil
}

// CreateAdmin provisions an admin with a temporary credential. Only a super
// admin may request the super-admin flag.
func (s *AdminService) CreateAdmin(ctx context.Context, actor domain.AdminActor, email string, superAdmin bool) (*ports.CreatedAccount, error) {
	if err := CanCreateSuperAdmin(actor, superAdmin); err != nil {
		s.logger.Warn().Str("actor_id", actor.AccountID).Str("email", email).Msg("super admin creation denied")
		return nil, err
	}

	created, err := s.accounts.createAccount(ctx, email, "", domain.RoleAdmin, "", "", "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateAdminProfile(ctx, &domain.AdminProfile{AccountID: created.Account.AccountID, SuperAdmin: superAdmin}); err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", created.Account.AccountID).Bool("super_admin", superAdmin).Msg("admin created")
	return created, nil
}

// BootstrapSuperAdmin ensures a super admin exists at startup. Idempotent:
// an already registered email is left untouched.
func (s *AdminService) BootstrapSuperAdmin(ctx context.Context, email string) error {
	created, err := s.accounts.createAccount(ctx, email, "", domain.RoleAdmin, "", "", "")
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyRegistered) {
			s.logger.Debug().Str("email", email).Msg("bootstrap super admin already exists")
			return nil
		}
		return err
	}
	if err := s.repo.CreateAdminProfile(ctx, &domain.AdminProfile{AccountID: created.Account.AccountID, SuperAdmin: true}); err != nil {
		return err
	}

	// The temporary password is only ever available here; the operator must
	// log in and set a permanent one before it expires.
	s.logger.Warn().
		Str("email", email).
		Str("temp_password", created.TempPassword).
		Int("expires_in_hours", created.TempPasswordTTLHours).
		Msg("bootstrap super admin created")
	return nil
}

func (s *AdminService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.repo.FindByAccountID(ctx, accountID, true)
}

func (s *AdminService) UpdateAccount(ctx context.Context, actor domain.AdminActor, targetID string, input ports.UpdateProfileInput) (*domain.Account, error) {
	target, err := s.repo.FindByAccountID(ctx, targetID, false)
	if err != nil {
		return nil, err
	}
	if err := CanModify(actor, target); err != nil {
		return nil, err
	}

	applyProfileUpdate(target, input)
	target.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, target); err != nil {
		return nil, err
	}

	s.logger.Info().Str("account_id", target.AccountID).Str("actor_id", actor.AccountID).Msg("account updated by admin")
	return target, nil
}

func (s *AdminService) Search(ctx context.Context, filter ports.SearchFilter) (*ports.SearchResult, error) {
	if filter.Size <= 0 {
		filter.Size = 20
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	accounts, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &ports.SearchResult{Accounts: accounts, Total: total, Page: filter.Page, Size: filter.Size}, nil
}

// Block overlays a block-until deadline and revokes the refresh token so
// existing sessions die with the block.
func (s *AdminService) Block(ctx context.Context, actor domain.AdminActor, targetID string, until time.Time) error {
	target, err := s.guardedTarget(ctx, actor, targetID, "block", false)
	if err != nil {
		return err
	}

	target.BlockedUntil = &until
	target.RefreshToken = nil
	target.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, target); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", target.AccountID).Str("actor_id", actor.AccountID).Time("until", until).Msg("account blocked")
	return nil
}

func (s *AdminService) Unblock(ctx context.Context, actor domain.AdminActor, targetID string) error {
	target, err := s.guardedTarget(ctx, actor, targetID, "unblock", false)
	if err != nil {
		return err
	}

	target.BlockedUntil = nil
	target.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, target); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", target.AccountID).Str("actor_id", actor.AccountID).Msg("account unblocked")
	return nil
}

// SoftDelete flags the account as deleted and revokes its refresh token.
// The row and all its data survive; default lookups stop seeing it.
func (s *AdminService) SoftDelete(ctx context.Context, actor domain.AdminActor, targetID string) error {
	target, err := s.guardedTarget(ctx, actor, targetID, "delete", false)
	if err != nil {
		return err
	}

	target.SoftDeleted = true
	target.RefreshToken = nil
	target.UpdatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, target); err != nil {
		return err
	}

	s.logger.Info().Str("account_id", target.AccountID).Str("actor_id", actor.AccountID).Msg("account soft deleted")
	return nil
}

// HardDelete removes the account row and publishes a deletion notice. The
// publish is best effort: the delete stands even when publishing fails.
func (s *AdminService) HardDelete(ctx context.Context, actor domain.AdminActor, targetID string) error {
	target, err := s.guardedTarget(ctx, actor, targetID, "delete", true)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, target.AccountID); err != nil {
		return err
	}

	event := AccountDeletionEvent{AccountID: target.AccountID, DeletedAt: time.Now().UTC()}
	if err := s.sink.Publish(ctx, TopicAccountDeletion, event); err != nil {
		s.logger.Error().Err(err).Str("account_id", target.AccountID).Msg("failed to publish account deletion event")
	}

	s.logger.Info().Str("account_id", target.AccountID).Str("actor_id", actor.AccountID).Msg("account hard deleted")
	return nil
}

// guardedTarget loads the target and applies the self-modification and
// permission checks common to all destructive admin operations.
func (s *AdminService) guardedTarget(ctx context.Context, actor domain.AdminActor, targetID, action string, includeDeleted bool) (*domain.Account, error) {
	target, err := s.repo.FindByAccountID(ctx, targetID, includeDeleted)
	if err != nil {
		return nil, err
	}
	if err := RejectSelfModification(actor.AccountID, targetID, action); err != nil {
		s.logger.Warn().Str("actor_id", actor.AccountID).Str("action", action).Msg("self modification rejected")
		return nil, err
	}
	if err := CanModify(actor, target); err != nil {
		s.logger.Warn().Str("actor_id", actor.AccountID).Str("target_id", targetID).Str("action", action).Msg("permission denied")
		return nil, err
	}
	return target, nil
}
