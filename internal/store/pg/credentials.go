package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentlink/talentlink/internal/domain/repository"
)

// CredentialRepo implements repository.CredentialRepository.
type CredentialRepo struct {
	pool *pgxpool.Pool
}

var _ repository.CredentialRepository = (*CredentialRepo)(nil)

// Ensure calls the ensure_api_credential function, which creates a
// credential when the user has none. Maps an undeployed function to
// ErrRPCUnavailable so the caller can fall back to a direct insert.
func (r *CredentialRepo) Ensure(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `SELECT ensure_api_credential($1)`, userID)
	if err != nil {
		if isPgCode(err, pgUndefinedFunction) {
			return repository.ErrRPCUnavailable
		}
		return fmt.Errorf("pg: ensure_api_credential: %w", err)
	}
	return nil
}

func (r *CredentialRepo) Exists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM api_credentials WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	return exists, err
}

func (r *CredentialRepo) Insert(ctx context.Context, cred repository.APICredential) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO api_credentials (user_id, key_id, secret_hash, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO NOTHING`,
		cred.UserID, cred.KeyID, cred.SecretHash,
	)
	return err
}
