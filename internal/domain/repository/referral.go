package repository

import "context"

// ReferralStatus is the structured outcome of the atomic referral RPC.
// Non-success outcomes are ordinary results, not errors.
type ReferralStatus string

const (
	ReferralApplied         ReferralStatus = "applied"
	ReferralAlreadyReferred ReferralStatus = "already_referred"
	ReferralSelfReferral    ReferralStatus = "self_referral"
	ReferralCodeNotFound    ReferralStatus = "code_not_found"
)

// ReferralRepository applies referral codes. The server-side function owns
// idempotency and crediting of both parties; callers only decide whether to
// call and with what code.
type ReferralRepository interface {
	Apply(ctx context.Context, userID, code string) (ReferralStatus, error)
}
