package oauth

import (
	"context"
	"errors"
)

// ConnectService drives the explicit GitHub account linking flow: Start
// issues the signed state and the authorize URL, Complete handles the
// provider's callback.
type ConnectService interface {
	// Start returns the GitHub authorize URL carrying a signed state bound
	// to the initiating user.
	Start(ctx context.Context, userID string) (string, error)

	// Complete verifies the returned state, exchanges the code and upserts
	// the connection. It returns the user ID recovered from the state.
	Complete(ctx context.Context, req CompleteRequest) (string, error)
}

// CompleteRequest carries the provider callback parameters.
type CompleteRequest struct {
	Code  string
	State string
}

// Linking flow errors. The controller maps them onto the <provider>_error
// redirect vocabulary.
var (
	ErrConnectMissingParams = errors.New("missing code or state")
	ErrConnectInvalidState  = errors.New("invalid state")
	ErrConnectStateExpired  = errors.New("state expired")
	ErrConnectExchange      = errors.New("code exchange failed")
)
