package authclient

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// TokenClaims are the claims the service reads off a provider-issued
// access token.
type TokenClaims struct {
	UserID    string
	Email     string
	SessionID string
	ExpiresAt time.Time
}

var ErrTokenInvalid = errors.New("authclient: access token invalid")

// ParseAccessToken verifies a provider HS256 access token with the shared
// JWT secret and extracts its claims. Used to answer "who is this bearer"
// without a round trip to the provider.
func ParseAccessToken(token, secret string) (*TokenClaims, error) {
	tk, err := jwtv5.Parse(token,
		func(t *jwtv5.Token) (any, error) { return []byte(secret), nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
	)
	if err != nil || !tk.Valid {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims, ok := tk.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrTokenInvalid
	}

	out := &TokenClaims{UserID: sub}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if sid, ok := claims["session_id"].(string); ok {
		out.SessionID = sid
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}
