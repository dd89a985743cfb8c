package service

import (
	"fmt"

	"github.com/ensplatform/auth-service/internal/core/domain"
)

// CanModify decides whether the acting admin may mutate the target account.
// Super admins may modify anyone; plain admins only plain users.
func CanModify(actor domain.AdminActor, target *domain.Account) error {
	if actor.SuperAdmin {
		return nil
	}
	if target.Role != domain.RoleUser {
		return fmt.Errorf("%w: only a super admin can modify this account", domain.ErrForbidden)
	}
	return nil
}

// RejectSelfModification forbids an admin from applying a destructive or
// blocking action to their own account. Profile self-updates bypass this.
func RejectSelfModification(actorID, targetID, action string) error {
	if actorID == targetID {
		return fmt.Errorf("%w: you can't %s yourself", domain.ErrForbidden, action)
	}
	return nil
}

// CanCreateSuperAdmin forbids a non-super admin from minting a super admin.
func CanCreateSuperAdmin(actor domain.AdminActor, requestedSuperAdmin bool) error {
	if requestedSuperAdmin && !actor.SuperAdmin {
		return fmt.Errorf("%w: only a super admin can create another super admin", domain.ErrForbidden)
	}
	return nil
}
