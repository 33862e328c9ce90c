package auth

import (
	"context"

	"github.com/tallerhq/backoffice/internal/models"
)

// Authenticator abstracts how an identity is established. Two implementations
// exist: LocalAuthenticator for the on-device account used when no backend is
// configured, and HostedAuthenticator for accounts living in the backend's
// auth system. The rest of the service never knows which one it holds.
type Authenticator interface {
	// Register creates a new account with the given email and credential.
	Register(ctx context.Context, email, credential string) (*models.User, error)

	// Authenticate verifies the credentials and returns the user if valid.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the implementation's
	// requirements before any account is touched.
	ValidateCredential(credential string) error
}
