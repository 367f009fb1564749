// Package authclient talks to the managed authentication provider
// (GoTrue-compatible HTTP API). It exposes the three calls the identity
// subsystem needs: OTP verification, authorization-code exchange, and user
// fetch for an established session.
package authclient

import (
	"context"
	"time"
)

// User is the provider's representation of an authenticated account — the
// Principal of the identity subsystem. It is transient per request; rows
// derived from it are persisted by downstream services.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	CreatedAt        time.Time      `json:"created_at"`
	EmailConfirmedAt *time.Time     `json:"email_confirmed_at,omitempty"`
	Identities       []Identity     `json:"identities,omitempty"`
	UserMetadata     map[string]any `json:"user_metadata,omitempty"`
	AppMetadata      map[string]any `json:"app_metadata,omitempty"`
}

// Identity is one provider-linked identity on a User.
type Identity struct {
	Provider       string         `json:"provider"`
	ProviderUserID string         `json:"id"`
	IdentityData   map[string]any `json:"identity_data,omitempty"`
}

// Session is the provider session handed back after verification.
// ProviderToken is the third-party OAuth access token and is only present
// on the login that created it; it is never returned again.
type Session struct {
	AccessToken   string `json:"access_token"`
	TokenType     string `json:"token_type"`
	ExpiresIn     int    `json:"expires_in"`
	RefreshToken  string `json:"refresh_token"`
	ProviderToken string `json:"provider_token,omitempty"`
	User          *User  `json:"user,omitempty"`
}

// Client is the surface the identity verifier consumes.
type Client interface {
	// VerifyOTP verifies a hashed email token of the given type.
	VerifyOTP(ctx context.Context, tokenHash, otpType string) (*Session, error)

	// ExchangeCode exchanges an authorization code for a session.
	ExchangeCode(ctx context.Context, code string) (*Session, error)

	// GetUser fetches the user for a session access token.
	GetUser(ctx context.Context, accessToken string) (*User, error)
}

// IdentityFor returns the identity for provider, or nil.
func (u *User) IdentityFor(provider string) *Identity {
	for i := range u.Identities {
		if u.Identities[i].Provider == provider {
			return &u.Identities[i]
		}
	}
	return nil
}

// MetadataString returns a string field from user metadata, or "".
func (u *User) MetadataString(key string) string {
	if u.UserMetadata == nil {
		return ""
	}
	s, _ := u.UserMetadata[key].(string)
	return s
}
