package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ensplatform/auth-service/internal/core/domain"
)

type authFixture struct {
	repo     *stubAccountRepo
	store    *stubChallengeStore
	notifier *stubNotifier
	svc      *AuthService
}

func newAuthFixture() *authFixture {
	repo := newStubAccountRepo()
	store := newStubChallengeStore()
	notifier := &stubNotifier{}

	authenticator := NewAuthenticator(repo, plainHasher{}, testLogger())
	issuer := NewTokenIssuer(repo, "secret", 0, 0, testLogger())
	loginOtp := NewChallengeFlow(store, notifier, PurposeLoginOtp, SubjectLoginOtp, 5*time.Minute, testLogger())

	return &authFixture{
		repo:     repo,
		store:    store,
		notifier: notifier,
		svc:      NewAuthService(authenticator, issuer, loginOtp, repo, testLogger()),
	}
}

func (f *authFixture) seedUser(t *testing.T, email, password string) *domain.Account {
	t.Helper()
	account := &domain.Account{
		AccountID:    "acc-" + email,
		Email:        email,
		PasswordHash: "hash:" + password,
		Role:         domain.RoleUser,
	}
	mustCreateAccount(f.repo, account)
	if err := f.repo.CreateUserProfile(context.Background(), &domain.UserProfile{AccountID: account.AccountID}); err != nil {
		t.Fatalf("create user profile: %v", err)
	}
	return account
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	f := newAuthFixture()
	account := f.seedUser(t, "alice@example.com", "s3cret")

	pair, err := f.svc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete token pair: %+v", pair)
	}

	stored, err := f.repo.FindByAccountID(context.Background(), account.AccountID, false)
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if stored.RefreshToken == nil || stored.RefreshToken.Token != pair.RefreshToken {
		t.Fatalf("refresh token not persisted on the account")
	}
}

func TestAuthService_Authenticate_EmptyInput(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.Authenticate(context.Background(), "", "pass"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := f.svc.Authenticate(context.Background(), "a@b.c", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_RequestLoginOtp_WrongPassword(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "alice@example.com", "s3cret")

	if err := f.svc.RequestLoginOtp(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, delivered := f.notifier.last(); delivered {
		t.Fatalf("code must not be sent on failed first factor")
	}
}

func TestAuthService_LoginOtp_FullFlow(t *testing.T) {
	f := newAuthFixture()
	account := f.seedUser(t, "alice@example.com", "s3cret")

	if err := f.svc.RequestLoginOtp(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("RequestLoginOtp returned error: %v", err)
	}
	sent, ok := f.notifier.last()
	if !ok {
		t.Fatalf("no code delivered")
	}

	pair, err := f.svc.CompleteLoginOtp(context.Background(), "alice@example.com", sent.code)
	if err != nil {
		t.Fatalf("CompleteLoginOtp returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("incomplete token pair: %+v", pair)
	}

	stored, err := f.repo.FindByAccountID(context.Background(), account.AccountID, false)
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if stored.RefreshToken == nil || stored.RefreshToken.Token != pair.RefreshToken {
		t.Fatalf("refresh token not persisted")
	}

	// Codes are single use.
	if _, err := f.svc.CompleteLoginOtp(context.Background(), "alice@example.com", sent.code); !errors.Is(err, domain.ErrInvalidChallenge) {
		t.Fatalf("expected reused code to fail, got %v", err)
	}
}

func TestAuthService_CompleteLoginOtp_BlockedMidFlight(t *testing.T) {
	f := newAuthFixture()
	account := f.seedUser(t, "alice@example.com", "s3cret")

	if err := f.svc.RequestLoginOtp(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("RequestLoginOtp returned error: %v", err)
	}
	sent, ok := f.notifier.last()
	if !ok {
		t.Fatalf("no code delivered")
	}

	// Block the account while the code is still unredeemed.
	until := time.Now().UTC().Add(time.Hour)
	account.BlockedUntil = &until
	if err := f.repo.Save(context.Background(), account); err != nil {
		t.Fatalf("save blocked account: %v", err)
	}

	if _, err := f.svc.CompleteLoginOtp(context.Background(), "alice@example.com", sent.code); !errors.Is(err, domain.ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked, got %v", err)
	}

	stored, err := f.repo.FindByAccountID(context.Background(), account.AccountID, false)
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if stored.RefreshToken != nil {
		t.Fatalf("no session must be minted for a blocked account")
	}
}

func TestAuthService_CompleteLoginOtp_WrongCode(t *testing.T) {
	f := newAuthFixture()
	f.seedUser(t, "alice@example.com", "s3cret")

	if err := f.svc.RequestLoginOtp(context.Background(), "alice@example.com", "s3cret"); err != nil {
		t.Fatalf("RequestLoginOtp returned error: %v", err)
	}

	if _, err := f.svc.CompleteLoginOtp(context.Background(), "alice@example.com", "999999x"); !errors.Is(err, domain.ErrInvalidChallenge) {
		t.Fatalf("expected ErrInvalidChallenge, got %v", err)
	}
}

func TestAuthService_RefreshSession_EmptyToken(t *testing.T) {
	f := newAuthFixture()

	if _, err := f.svc.RefreshSession(context.Background(), ""); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
}

func TestAuthService_Logout_RevokesRefreshToken(t *testing.T) {
	f := newAuthFixture()
	account := f.seedUser(t, "alice@example.com", "s3cret")

	pair, err := f.svc.Authenticate(context.Background(), "alice@example.com", "s3cret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	if err := f.svc.Logout(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}

	stored, err := f.repo.FindByAccountID(context.Background(), account.AccountID, false)
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	if stored.RefreshToken != nil {
		t.Fatalf("refresh token still present after logout")
	}
	if _, err := f.svc.RefreshSession(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected revoked token to fail refresh, got %v", err)
	}
}

func TestAuthService_Logout_UnknownEmailIsNoop(t *testing.T) {
	f := newAuthFixture()

	if err := f.svc.Logout(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("expected logout of unknown email to succeed, got %v", err)
	}
}
