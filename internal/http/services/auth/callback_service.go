package auth

import "context"

// Well-known relative paths used when computing callback redirects.
const (
	LoginPath           = "/login"
	CallbackSuccessPath = "/auth/callback-success"
)

// CallbackRequest carries everything the orchestrator needs from the
// inbound callback URL and cookies.
type CallbackRequest struct {
	Verify VerifyRequest

	// Next is the requested post-login destination, sanitized before use.
	Next string
	// Popup selects the popup-completion response shape.
	Popup bool

	// ReferralURLCode is the referral code from the query string, if any.
	ReferralURLCode string
	// ReferralCookieCode is the referral code from the transient cookie.
	ReferralCookieCode string
}

// CallbackResult tells the controller where to send the user. The
// orchestrator never fails the request itself; verification failures are
// folded into the redirect location.
type CallbackResult struct {
	// Location is the relative redirect target.
	Location string
	// Outcome labels the result for metrics: "success" or the failure kind.
	Outcome string
	// Authenticated reports whether verification succeeded.
	Authenticated bool
}

// CallbackService is the callback orchestrator: it verifies the inbound
// parameters, runs the best-effort post-auth tasks and computes the final
// redirect.
type CallbackService interface {
	Callback(ctx context.Context, req CallbackRequest) *CallbackResult
}
