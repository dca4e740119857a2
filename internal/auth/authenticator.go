// Package auth verifies credentials and issues session tokens.
package auth

import (
	"context"

	"github.com/mmynk/munera/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password,
// external identity providers, etc.) without changing the API layer.
type Authenticator interface {
	// Authenticate verifies the user's credentials and returns the user if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, username, credential string) (*models.User, error)

	// ValidateCredential checks if a new credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
