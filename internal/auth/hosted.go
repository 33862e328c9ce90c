package auth

import (
	"context"
	"fmt"

	"github.com/tallerhq/backoffice/internal/models"
	"github.com/tallerhq/backoffice/internal/storage/rest"
)

// HostedAuthenticator delegates account management to the backend's auth
// endpoints. Password hashing and verification happen server-side; this
// implementation only moves credentials over TLS and keeps the resulting
// access token on the shared REST client.
type HostedAuthenticator struct {
	client *rest.Client
}

// NewHostedAuthenticator creates an authenticator over the backend client.
func NewHostedAuthenticator(client *rest.Client) *HostedAuthenticator {
	return &HostedAuthenticator{client: client}
}

var _ Authenticator = (*HostedAuthenticator)(nil)

// ValidateCredential mirrors the backend's minimum password policy so obvious
// rejects never leave the process.
func (a *HostedAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < 8 {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a backend account.
func (a *HostedAuthenticator) Register(ctx context.Context, email, credential string) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}
	session, err := a.client.SignUp(ctx, email, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to sign up: %w", err)
	}
	return &models.User{ID: session.User.ID, Email: session.User.Email}, nil
}

// Authenticate signs in against the backend. On success the client carries
// the session's access token for every subsequent data call.
func (a *HostedAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.User, error) {
	session, err := a.client.SignIn(ctx, email, credential)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return &models.User{ID: session.User.ID, Email: session.User.Email}, nil
}
