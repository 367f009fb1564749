package auth

import (
	"context"
	"errors"

	"github.com/talentlink/talentlink/internal/authclient"
)

// Flow identifies which verification path handled a request.
type Flow string

const (
	FlowToken Flow = "token"
	FlowCode  Flow = "code"
	FlowNone  Flow = "none"
)

// OTP link types accepted by the token flow. Anything else is rejected
// before the provider is called.
var allowedLinkTypes = map[string]struct{}{
	"recovery":     {},
	"email":        {},
	"signup":       {},
	"invite":       {},
	"magiclink":    {},
	"email_change": {},
}

// VerifyRequest carries the auth parameters extracted from the callback URL.
// TokenHash is preferred over the legacy Token parameter.
type VerifyRequest struct {
	TokenHash string
	Token     string
	LinkType  string
	Code      string
}

// SelectFlow decides which verification flow the parameters trigger.
func (r VerifyRequest) SelectFlow() Flow {
	if (r.TokenHash != "" || r.Token != "") && r.LinkType != "" {
		return FlowToken
	}
	if r.Code != "" {
		return FlowCode
	}
	return FlowNone
}

// Principal is the verified identity. It lives only for the duration of the
// request; persisted records are derived from it downstream.
type Principal struct {
	User *authclient.User
	// AccessToken is the provider session token established by verification.
	AccessToken string
	// ProviderToken is the third-party OAuth access token, present only when
	// the login came through a third-party provider and only at login time.
	ProviderToken string
	Flow          Flow
}

// VerifyService resolves inbound callback parameters into a Principal.
type VerifyService interface {
	Verify(ctx context.Context, req VerifyRequest) (*Principal, error)
}

// Verification failure taxonomy. The controller maps these onto user-facing
// redirect messages; anything unclassified surfaces as ErrAuthenticationFailed.
var (
	ErrMissingParameters    = errors.New("no authentication parameters")
	ErrInvalidLinkType      = errors.New("link type not allowed")
	ErrExpired              = errors.New("token or code expired")
	ErrAlreadyUsedOrInvalid = errors.New("token already used or invalid")
	ErrAuthenticationFailed = errors.New("authentication failed")
)
