package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// stubAccountRepo is an in-memory AccountRepository. The mutex matters: the
// refresh rotation tests exercise it from concurrent goroutines.
type stubAccountRepo struct {
	mu            sync.Mutex
	accounts      map[string]*domain.Account // keyed by account ID
	adminProfiles map[string]*domain.AdminProfile
	userProfiles  map[string]*domain.UserProfile
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{
		accounts:      make(map[string]*domain.Account),
		adminProfiles: make(map[string]*domain.AdminProfile),
		userProfiles:  make(map[string]*domain.UserProfile),
	}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	if a.TempCredential != nil {
		tc := *a.TempCredential
		clone.TempCredential = &tc
	}
	if a.RefreshToken != nil {
		rt := *a.RefreshToken
		clone.RefreshToken = &rt
	}
	if a.BlockedUntil != nil {
		bu := *a.BlockedUntil
		clone.BlockedUntil = &bu
	}
	return &clone
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Email == account.Email {
			return domain.ErrAlreadyRegistered
		}
	}
	r.accounts[account.AccountID] = cloneAccount(account)
	return nil
}

func (r *stubAccountRepo) Save(_ context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.AccountID]; !ok {
		return domain.ErrAccountNotFound
	}
	r.accounts[account.AccountID] = cloneAccount(account)
	return nil
}

func (r *stubAccountRepo) Delete(_ context.Context, accountID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[accountID]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(r.accounts, accountID)
	delete(r.adminProfiles, accountID)
	delete(r.userProfiles, accountID)
	return nil
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string, includeDeleted bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Email == email {
			if a.SoftDeleted && !includeDeleted {
				return nil, domain.ErrAccountNotFound
			}
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByAccountID(_ context.Context, accountID string, includeDeleted bool) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok || (a.SoftDeleted && !includeDeleted) {
		return nil, domain.ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

func (r *stubAccountRepo) FindByRefreshToken(_ context.Context, token string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.RefreshToken != nil && a.RefreshToken.Token == token {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) RotateRefreshToken(_ context.Context, accountID, previous string, next *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if previous != "" {
		if a.RefreshToken == nil || a.RefreshToken.Token != previous {
			return domain.ErrSessionExpired
		}
	}
	if next == nil {
		a.RefreshToken = nil
		return nil
	}
	rt := *next
	a.RefreshToken = &rt
	return nil
}

func (r *stubAccountRepo) Search(_ context.Context, filter ports.SearchFilter) ([]domain.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	var out []domain.Account
	for _, a := range r.accounts {
		if a.SoftDeleted && !filter.IncludeDeleted {
			continue
		}
		if filter.Admins && a.Role != domain.RoleAdmin {
			continue
		}
		if filter.Users && a.Role != domain.RoleUser {
			continue
		}
		if filter.Blocked && !a.Blocked(now) {
			continue
		}
		if filter.Text != "" && !strings.Contains(a.Email, filter.Text) &&
			!strings.Contains(a.FirstName, filter.Text) && !strings.Contains(a.LastName, filter.Text) {
			continue
		}
		out = append(out, *cloneAccount(a))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].AccountID < out[j].AccountID
	})

	total := int64(len(out))
	if filter.Size > 0 {
		skip := (filter.Page - 1) * filter.Size
		if skip < 0 {
			skip = 0
		}
		if skip >= len(out) {
			out = nil
		} else {
			out = out[skip:]
			if len(out) > filter.Size {
				out = out[:filter.Size]
			}
		}
	}
	return out, total, nil
}

func (r *stubAccountRepo) CreateAdminProfile(_ context.Context, profile *domain.AdminProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *profile
	r.adminProfiles[profile.AccountID] = &p
	return nil
}

func (r *stubAccountRepo) CreateUserProfile(_ context.Context, profile *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := *profile
	r.userProfiles[profile.AccountID] = &p
	return nil
}

func (r *stubAccountRepo) FindAdminProfile(_ context.Context, accountID string) (*domain.AdminProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.adminProfiles[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubAccountRepo) FindUserProfile(_ context.Context, accountID string) (*domain.UserProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.userProfiles[accountID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

// stubChallengeStore is an in-memory ChallengeStore. TTLs are recorded but
// not enforced; expiry behaviour belongs to the real store's tests.
type stubChallengeStore struct {
	mu     sync.Mutex
	values map[string]string
	ttls   map[string]time.Duration
}

func newStubChallengeStore() *stubChallengeStore {
	return &stubChallengeStore{
		values: make(map[string]string),
		ttls:   make(map[string]time.Duration),
	}
}

func (s *stubChallengeStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *stubChallengeStore) ConsumeIfMatch(_ context.Context, key, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.values[key]
	if !ok || stored != value {
		return false, nil
	}
	delete(s.values, key)
	delete(s.ttls, key)
	return true, nil
}

func (s *stubChallengeStore) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// stubNotifier records deliveries and can be told to fail.
type stubNotifier struct {
	mu         sync.Mutex
	deliveries []delivery
	failWith   error
}

type delivery struct {
	destination string
	purpose     string
	code        string
}

func (n *stubNotifier) Deliver(_ context.Context, destination, purpose, code string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failWith != nil {
		return n.failWith
	}
	n.deliveries = append(n.deliveries, delivery{destination: destination, purpose: purpose, code: code})
	return nil
}

func (n *stubNotifier) last() (delivery, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.deliveries) == 0 {
		return delivery{}, false
	}
	return n.deliveries[len(n.deliveries)-1], true
}

// stubEventSink records published events and can be told to fail.
type stubEventSink struct {
	mu       sync.Mutex
	events   []publishedEvent
	failWith error
}

type publishedEvent struct {
	topic   string
	payload any
}

func (s *stubEventSink) Publish(_ context.Context, topic string, payload any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	s.events = append(s.events, publishedEvent{topic: topic, payload: payload})
	return nil
}

// plainHasher avoids bcrypt cost in tests that do not verify hashing itself.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }

func (plainHasher) Verify(plain, hashed string) bool { return hashed == "hash:"+plain }

func mustCreateAccount(repo *stubAccountRepo, account *domain.Account) {
	if err := repo.Create(context.Background(), account); err != nil {
		panic(fmt.Sprintf("create test account: %v", err))
	}
}
