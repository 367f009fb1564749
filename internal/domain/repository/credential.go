package repository

import (
	"context"
	"time"
)

// APICredential is the per-user opaque token record used by external and
// desktop clients against metered endpoints. At most one active credential
// per user.
type APICredential struct {
	UserID     string    `json:"user_id"`
	KeyID      string    `json:"key_id"`
	SecretHash string    `json:"secret_hash"`
	CreatedAt  time.Time `json:"created_at"`
}

// CredentialRepository persists API credentials.
type CredentialRepository interface {
	// Ensure invokes the server-side create-if-missing operation.
	// Returns ErrRPCUnavailable when the function is not deployed.
	Ensure(ctx context.Context, userID string) error

	// Exists reports whether a credential row exists for userID.
	Exists(ctx context.Context, userID string) (bool, error)

	// Insert creates a credential row directly. No-op if one already
	// exists for the user.
	Insert(ctx context.Context, cred APICredential) error
}
