package services

import (
	"context"
	"crypto/tls"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickdate/admin-api/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountExists      = errors.New("account already exists")
)

// MongoAdminService stores the dashboard's own operator accounts in Mongo,
// separate from the app data in Firestore.
type MongoAdminService struct {
	client    *mongo.Client
	adminsCol *mongo.Collection
}

func NewMongoAdminService(ctx context.Context, mongoURI, dbName string) (*MongoAdminService, error) {
	tlsCfg := &tls.Config{
		MinVersion: tls.VersionTLS12,
		MaxVersion: tls.VersionTLS12,
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI).SetTLSConfig(tlsCfg))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return &MongoAdminService{
		client:    client,
		adminsCol: client.Database(dbName).Collection("admin_users"),
	}, nil
}

func (s *MongoAdminService) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Authenticate verifies an email/password pair against the stored bcrypt
// hash and rejects disabled accounts.
func (s *MongoAdminService) Authenticate(ctx context.Context, email, password string) (*models.AdminAccount, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var account models.AdminAccount
	err := s.adminsCol.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if account.Disabled {
		return nil, ErrAccountDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &account, nil
}

// Lookup loads an account by email, used by the auth middleware to reject
// tokens for accounts disabled since issue.
func (s *MongoAdminService) Lookup(ctx context.Context, email string) (*models.AdminAccount, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var account models.AdminAccount
	err := s.adminsCol.FindOne(ctx, bson.M{"email": email}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if account.Disabled {
		return nil, ErrAccountDisabled
	}
	return &account, nil
}

// Create inserts a new admin account with a bcrypt-hashed password.
func (s *MongoAdminService) Create(ctx context.Context, email, name, password string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	count, err := s.adminsCol.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrAccountExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := time.Now()
	_, err = s.adminsCol.InsertOne(ctx, models.AdminAccount{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	return err
}

// EnsureSeed creates the account if missing; existing accounts are left
// untouched so seeding is safe to re-run in dev.
func (s *MongoAdminService) EnsureSeed(ctx context.Context, email, name, password string) error {
	err := s.Create(ctx, email, name, password)
	if errors.Is(err, ErrAccountExists) {
		return nil
	}
	return err
}
