package auth

import (
	"errors"
	"strings"

	"github.com/talentlink/talentlink/internal/authclient"
)

// classifiedError pairs a taxonomy sentinel with the provider's own
// user-facing message. Failures that never produced a provider error body
// (transport errors, timeouts, decode failures) carry no message, so
// nothing internal can reach a redirect URL.
type classifiedError struct {
	sentinel    error
	userMessage string
	cause       error
}

func (e *classifiedError) Error() string {
	switch {
	case e.userMessage != "":
		return e.sentinel.Error() + ": " + e.userMessage
	case e.cause != nil:
		return e.sentinel.Error() + ": " + e.cause.Error()
	default:
		return e.sentinel.Error()
	}
}

func (e *classifiedError) Unwrap() error { return e.sentinel }

// classifyProviderError maps the provider's loosely-typed error shapes onto
// the closed failure taxonomy. Provider quirks stay here; callers only ever
// see the sentinel errors.
//
// The provider reports errors through a code when it has one and a free-form
// message otherwise, so both are matched. Only messages from a provider
// error body are kept as user-facing; errors of any other shape are
// classified with the raw error preserved for logs alone.
func classifyProviderError(err error, flow Flow) error {
	var apiErr *authclient.APIError
	if !errors.As(err, &apiErr) {
		return &classifiedError{sentinel: ErrAuthenticationFailed, cause: err}
	}

	code := strings.ToLower(apiErr.Code)
	msg := strings.ToLower(apiErr.Message)

	switch code {
	case "otp_expired", "flow_state_expired", "flow_state_not_found":
		return &classifiedError{sentinel: ErrExpired, userMessage: apiErr.Message}
	case "otp_disabled":
		return &classifiedError{sentinel: ErrAlreadyUsedOrInvalid, userMessage: apiErr.Message}
	case "invalid_grant":
		// Code flow: a spent or stale authorization code comes back as
		// invalid_grant. Present it as expiry so the user re-requests a link.
		return &classifiedError{sentinel: ErrExpired, userMessage: apiErr.Message}
	}

	if strings.Contains(msg, "expired") {
		return &classifiedError{sentinel: ErrExpired, userMessage: apiErr.Message}
	}
	if flow == FlowToken && (strings.Contains(msg, "already been used") || strings.Contains(msg, "token not found")) {
		return &classifiedError{sentinel: ErrAlreadyUsedOrInvalid, userMessage: apiErr.Message}
	}

	return &classifiedError{sentinel: ErrAuthenticationFailed, userMessage: apiErr.Message}
}

// ProviderMessage extracts the user-facing provider message from a classified
// error, or "" when there is none.
func ProviderMessage(err error) string {
	var ce *classifiedError
	if errors.As(err, &ce) {
		return ce.userMessage
	}
	return ""
}
