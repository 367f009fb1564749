package repository

import (
	"context"
	"time"
)

// Connection is a linked third-party account, unique per (user, provider).
// AccessToken is stored encrypted; the store layer does not interpret it.
type Connection struct {
	UserID      string    `json:"user_id"`
	Provider    string    `json:"provider"`
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Scope       string    `json:"scope"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	ProfileURL  string    `json:"profile_url"`
	ConnectedAt time.Time `json:"connected_at"`
}

// ConnectionRepository persists third-party connections with upsert
// semantics safe under concurrent duplicate calls.
type ConnectionRepository interface {
	// Get returns the connection for (userID, provider), or ErrNotFound.
	Get(ctx context.Context, userID, provider string) (*Connection, error)

	// Upsert inserts or updates the connection in place. Reports whether
	// a new row was created.
	Upsert(ctx context.Context, conn Connection) (created bool, err error)
}
