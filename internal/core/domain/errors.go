package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidCredentials covers wrong password, missing password, expired
// temporary password, unknown email and soft-deleted accounts alike, so
// that login failures never reveal whether an account exists.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrSessionExpired means the presented refresh token is unknown, expired,
// or lost a concurrent rotation.
var ErrSessionExpired = errors.New("session has expired, please log in again")

// ErrInvalidChallenge covers wrong and expired one-time codes alike.
var ErrInvalidChallenge = errors.New("code is invalid or has expired")

var ErrForbidden = errors.New("forbidden action")
var ErrAlreadyRegistered = errors.New("email already registered")
var ErrAccountNotFound = errors.New("account not found")
var ErrSameEmail = errors.New("new email is equal to the current one")
var ErrSamePassword = errors.New("new password is equal to the current one")

// ErrProfileNotFound signals a missing role sub-profile. Every account must
// have one, so this is a data-integrity failure, not a user-facing 404.
var ErrProfileNotFound = errors.New("role profile not found")

// ErrDeliveryFailure means the notifier could not deliver a one-time code.
var ErrDeliveryFailure = errors.New("failed to deliver verification code")

// ErrAccountBlocked is the sentinel matched by errors.Is for BlockedError.
var ErrAccountBlocked = errors.New("account is blocked")

// BlockedError carries the instant until which the account stays blocked.
type BlockedError struct {
	Until time.Time
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("account is blocked until %s", e.Until.Format(time.RFC3339))
}

// Is lets errors.Is(err, ErrAccountBlocked) match regardless of the deadline.
func (e *BlockedError) Is(target error) bool {
	return target == ErrAccountBlocked
}
