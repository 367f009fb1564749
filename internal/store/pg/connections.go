package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentlink/talentlink/internal/domain/repository"
)

// ConnectionRepo implements repository.ConnectionRepository.
type ConnectionRepo struct {
	pool *pgxpool.Pool
}

var _ repository.ConnectionRepository = (*ConnectionRepo)(nil)

func (r *ConnectionRepo) Get(ctx context.Context, userID, provider string) (*repository.Connection, error) {
	const query = `
		SELECT user_id, provider, access_token, token_type, scope,
		       username, display_name, avatar_url, profile_url, connected_at
		FROM provider_connections
		WHERE user_id = $1 AND provider = $2`

	var c repository.Connection
	err := r.pool.QueryRow(ctx, query, userID, provider).Scan(
		&c.UserID, &c.Provider, &c.AccessToken, &c.TokenType, &c.Scope,
		&c.Username, &c.DisplayName, &c.AvatarURL, &c.ProfileURL, &c.ConnectedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert keys on (user_id, provider); concurrent duplicate calls collapse
// onto the unique constraint.
func (r *ConnectionRepo) Upsert(ctx context.Context, conn repository.Connection) (bool, error) {
	const query = `
		INSERT INTO provider_connections
			(user_id, provider, access_token, token_type, scope,
			 username, display_name, avatar_url, profile_url, connected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			token_type   = EXCLUDED.token_type,
			scope        = EXCLUDED.scope,
			username     = EXCLUDED.username,
			display_name = EXCLUDED.display_name,
			avatar_url   = EXCLUDED.avatar_url,
			profile_url  = EXCLUDED.profile_url,
			connected_at = NOW()
		RETURNING (xmax = 0) AS created`

	var created bool
	err := r.pool.QueryRow(ctx, query,
		conn.UserID, conn.Provider, conn.AccessToken, conn.TokenType, conn.Scope,
		conn.Username, conn.DisplayName, conn.AvatarURL, conn.ProfileURL,
	).Scan(&created)
	if err != nil {
		return false, err
	}
	return created, nil
}
