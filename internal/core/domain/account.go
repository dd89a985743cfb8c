package domain

import "time"

// Role classifies an account within the two-tier permission hierarchy.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// TemporaryCredential is a short-lived bootstrap secret issued when an
// account is provisioned without a user-chosen password. At most one is
// active per account; it is destroyed the moment a permanent password is set.
type TemporaryCredential struct {
	Hash      string    `json:"-" bson:"hash"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// Expired reports whether the credential is no longer usable at the given instant.
func (t *TemporaryCredential) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// RefreshToken is the single session-continuation credential of an account.
// Creating a new one always replaces the previous one.
type RefreshToken struct {
	Token     string    `json:"token" bson:"token"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// Expired reports whether the token can still be exchanged at the given instant.
func (r *RefreshToken) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Account is the identity root. It carries the credential state, the
// lifecycle flags and the single active refresh token.
type Account struct {
	ID             string               `json:"-"`
	AccountID      string               `json:"account_id"`
	Email          string               `json:"email"`
	PasswordHash   string               `json:"-"`
	TempCredential *TemporaryCredential `json:"-"`
	RefreshToken   *RefreshToken        `json:"-"`
	BlockedUntil   *time.Time           `json:"blocked_until,omitempty"`
	SoftDeleted    bool                 `json:"soft_deleted"`
	Role           Role                 `json:"role"`
	FirstName      string               `json:"first_name,omitempty"`
	LastName       string               `json:"last_name,omitempty"`
	PhoneNumber    string               `json:"phone_number,omitempty"`
	OrganizationID string               `json:"organization_id,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// Blocked reports whether the block overlay is active at the given instant.
// A blocked-until timestamp in the past (or absent) means unblocked.
func (a *Account) Blocked(now time.Time) bool {
	return a.BlockedUntil != nil && a.BlockedUntil.After(now)
}

// HasTempCredential reports whether an unexpired temporary credential is
// present. When it is, the temporary hash is authoritative during
// verification regardless of any permanent hash.
func (a *Account) HasTempCredential(now time.Time) bool {
	return a.TempCredential != nil && !a.TempCredential.Expired(now)
}

// AdminProfile is the role sub-profile attached 1:1 to ADMIN accounts.
type AdminProfile struct {
	AccountID  string `json:"account_id"`
	SuperAdmin bool   `json:"super_admin"`
}

// UserProfile is the role sub-profile attached 1:1 to USER accounts.
type UserProfile struct {
	AccountID string `json:"account_id"`
}

// AdminActor identifies the administrator performing a guarded mutation.
type AdminActor struct {
	AccountID  string
	SuperAdmin bool
}
