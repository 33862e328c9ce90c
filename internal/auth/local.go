package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tallerhq/backoffice/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrAccountExists      = errors.New("account already registered on this device")
)

// UserStore is the slice of the local store the authenticator needs. Local
// mode holds exactly one account.
type UserStore interface {
	DemoUser(ctx context.Context) (*models.User, error)
	SaveDemoUser(ctx context.Context, user *models.User) error
}

// LocalAuthenticator implements password authentication for the on-device
// account, with bcrypt-hashed credentials. It backs local-only mode, where no
// hosted auth system exists.
type LocalAuthenticator struct {
	store UserStore
}

// NewLocalAuthenticator creates an authenticator over the local user store.
func NewLocalAuthenticator(store UserStore) *LocalAuthenticator {
	return &LocalAuthenticator{store: store}
}

var _ Authenticator = (*LocalAuthenticator)(nil)

// ValidateCredential checks the password meets minimum requirements.
func (a *LocalAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates the device account. Only one account exists per device;
// registering twice fails.
func (a *LocalAuthenticator) Register(ctx context.Context, email, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.store.DemoUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local account: %w", err)
	}
	if existing != nil {
		return nil, ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(credential), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().Unix(),
	}
	if err := a.store.SaveDemoUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save local account: %w", err)
	}
	return user, nil
}

// Authenticate verifies the email and password against the device account.
func (a *LocalAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	user, err := a.store.DemoUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read local account: %w", err)
	}
	if user == nil || user.Email != email {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
