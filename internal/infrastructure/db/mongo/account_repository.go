package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ensplatform/auth-service/internal/core/domain"
	"github.com/ensplatform/auth-service/internal/core/ports"
)

const (
	accountCollection = "accounts"
	adminCollection   = "admins"
	userCollection    = "users"
)

// AccountRepository persists the Account aggregate in MongoDB. The
// temporary credential and refresh token are embedded in the account
// document, so every lifecycle mutation is a single-document (atomic)
// write and refresh rotation can be expressed as a conditional update.
type AccountRepository struct {
	accounts *mongo.Collection
	admins   *mongo.Collection
	users    *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{
		accounts: db.Collection(accountCollection),
		admins:   db.Collection(adminCollection),
		users:    db.Collection(userCollection),
	}
}

type tempCredentialDoc struct {
	Hash      string    `bson:"hash"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type refreshTokenDoc struct {
	Token     string    `bson:"token"`
	ExpiresAt time.Time `bson:"expires_at"`
}

type accountDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	AccountID      string             `bson:"account_id"`
	Email          string             `bson:"email"`
	PasswordHash   string             `bson:"password_hash,omitempty"`
	TempCredential *tempCredentialDoc `bson:"temporary_credential,omitempty"`
	RefreshToken   *refreshTokenDoc   `bson:"refresh_token,omitempty"`
	BlockedUntil   *time.Time         `bson:"blocked_until,omitempty"`
	SoftDeleted    bool               `bson:"soft_deleted"`
	Role           string             `bson:"role"`
	FirstName      string             `bson:"first_name,omitempty"`
	LastName       string             `bson:"last_name,omitempty"`
	PhoneNumber    string             `bson:"phone_number,omitempty"`
	OrganizationID string             `bson:"organization_id,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

type adminProfileDoc struct {
	AccountID  string `bson:"account_id"`
	SuperAdmin bool   `bson:"super_admin"`
}

type userProfileDoc struct {
	AccountID string `bson:"account_id"`
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	res, err := r.accounts.InsertOne(ctx, toDoc(account))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("insert account: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		account.ID = oid.Hex()
	}
	return nil
}

// Save replaces the whole account document, keyed by account ID. Replacing
// the full aggregate in one write keeps credential, block and token state
// consistent for concurrent readers.
func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	doc := toDoc(account)
	res, err := r.accounts.ReplaceOne(ctx, bson.M{"account_id": account.AccountID}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("save account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// Delete removes the account row and its role sub-profiles.
func (r *AccountRepository) Delete(ctx context.Context, accountID string) error {
	res, err := r.accounts.DeleteOne(ctx, bson.M{"account_id": accountID})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	_, _ = r.admins.DeleteOne(ctx, bson.M{"account_id": accountID})
	_, _ = r.users.DeleteOne(ctx, bson.M{"account_id": accountID})
	return nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string, includeDeleted bool) (*domain.Account, error) {
	filter := bson.M{"email": email}
	if !includeDeleted {
		filter["soft_deleted"] = false
	}
	return r.findOne(ctx, filter)
}

func (r *AccountRepository) FindByAccountID(ctx context.Context, accountID string, includeDeleted bool) (*domain.Account, error) {
	filter := bson.M{"account_id": accountID}
	if !includeDeleted {
		filter["soft_deleted"] = false
	}
	return r.findOne(ctx, filter)
}

func (r *AccountRepository) FindByRefreshToken(ctx context.Context, token string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"refresh_token.token": token})
}

// RotateRefreshToken sets or clears the embedded refresh token. A non-empty
// previous value turns the update into a compare-and-swap: when the stored
// token no longer matches, no document is updated and the rotation loses.
func (r *AccountRepository) RotateRefreshToken(ctx context.Context, accountID, previous string, next *domain.RefreshToken) error {
	filter := bson.M{"account_id": accountID}
	if previous != "" {
		filter["refresh_token.token"] = previous
	}

	var update bson.M
	if next != nil {
		update = bson.M{"$set": bson.M{"refresh_token": &refreshTokenDoc{Token: next.Token, ExpiresAt: next.ExpiresAt}}}
	} else {
		update = bson.M{"$unset": bson.M{"refresh_token": ""}}
	}

	res, err := r.accounts.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("rotate refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		if previous != "" {
			return domain.ErrSessionExpired
		}
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Search(ctx context.Context, filter ports.SearchFilter) ([]domain.Account, int64, error) {
	query := bson.M{}

	if !filter.IncludeDeleted {
		query["soft_deleted"] = false
	}
	if filter.Text != "" {
		pattern := primitive.Regex{Pattern: filter.Text, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"email": pattern},
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
		}
	}

	switch {
	case filter.Admins && !filter.Users:
		query["role"] = string(domain.RoleAdmin)
	case filter.Users && !filter.Admins:
		query["role"] = string(domain.RoleUser)
	}

	if filter.Blocked {
		query["blocked_until"] = bson.M{"$gt": time.Now().UTC()}
	}

	total, err := r.accounts.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	// Pages are 1-based: page 1 starts at the newest account.
	skip := int64((filter.Page - 1) * filter.Size)
	if skip < 0 {
		skip = 0
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).
		SetLimit(int64(filter.Size))

	cursor, err := r.accounts.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("search accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var accounts []domain.Account
	for cursor.Next(ctx) {
		var doc accountDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, *fromDoc(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("search accounts: %w", err)
	}

	return accounts, total, nil
}

func (r *AccountRepository) CreateAdminProfile(ctx context.Context, profile *domain.AdminProfile) error {
	_, err := r.admins.InsertOne(ctx, adminProfileDoc{AccountID: profile.AccountID, SuperAdmin: profile.SuperAdmin})
	if err != nil {
		return fmt.Errorf("insert admin profile: %w", err)
	}
	return nil
}

func (r *AccountRepository) CreateUserProfile(ctx context.Context, profile *domain.UserProfile) error {
	_, err := r.users.InsertOne(ctx, userProfileDoc{AccountID: profile.AccountID})
	if err != nil {
		return fmt.Errorf("insert user profile: %w", err)
	}
	return nil
}

func (r *AccountRepository) FindAdminProfile(ctx context.Context, accountID string) (*domain.AdminProfile, error) {
	var doc adminProfileDoc
	if err := r.admins.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find admin profile: %w", err)
	}
	return &domain.AdminProfile{AccountID: doc.AccountID, SuperAdmin: doc.SuperAdmin}, nil
}

func (r *AccountRepository) FindUserProfile(ctx context.Context, accountID string) (*domain.UserProfile, error) {
	var doc userProfileDoc
	if err := r.users.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find user profile: %w", err)
	}
	return &domain.UserProfile{AccountID: doc.AccountID}, nil
}

// EnsureIndexes creates the unique email index guarding registration races.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.accounts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "refresh_token.token", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	var doc accountDoc
	if err := r.accounts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return fromDoc(&doc), nil
}

func toDoc(a *domain.Account) *accountDoc {
	doc := &accountDoc{
		AccountID:      a.AccountID,
		Email:          a.Email,
		PasswordHash:   a.PasswordHash,
		BlockedUntil:   a.BlockedUntil,
		SoftDeleted:    a.SoftDeleted,
		Role:           string(a.Role),
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		PhoneNumber:    a.PhoneNumber,
		OrganizationID: a.OrganizationID,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.ID != "" {
		if oid, err := primitive.ObjectIDFromHex(a.ID); err == nil {
			doc.ID = oid
		}
	}
	if a.TempCredential != nil {
		doc.TempCredential = &tempCredentialDoc{Hash: a.TempCredential.Hash, ExpiresAt: a.TempCredential.ExpiresAt}
	}
	if a.RefreshToken != nil {
		doc.RefreshToken = &refreshTokenDoc{Token: a.RefreshToken.Token, ExpiresAt: a.RefreshToken.ExpiresAt}
	}
	return doc
}

func fromDoc(doc *accountDoc) *domain.Account {
	account := &domain.Account{
		ID:             doc.ID.Hex(),
		AccountID:      doc.AccountID,
		Email:          doc.Email,
		PasswordHash:   doc.PasswordHash,
		BlockedUntil:   doc.BlockedUntil,
		SoftDeleted:    doc.SoftDeleted,
		Role:           domain.Role(doc.Role),
		FirstName:      doc.FirstName,
		LastName:       doc.LastName,
		PhoneNumber:    doc.PhoneNumber,
		OrganizationID: doc.OrganizationID,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
	if doc.TempCredential != nil {
		account.TempCredential = &domain.TemporaryCredential{Hash: doc.TempCredential.Hash, ExpiresAt: doc.TempCredential.ExpiresAt}
	}
	if doc.RefreshToken != nil {
		account.RefreshToken = &domain.RefreshToken{Token: doc.RefreshToken.Token, ExpiresAt: doc.RefreshToken.ExpiresAt}
	}
	return account
}
