package auth

import "context"

// ProvisionService idempotently bootstraps the records a newly authenticated
// user needs. Safe to call on every login; all failures are swallowed after
// logging because login must complete even if bootstrap partially fails.
type ProvisionService interface {
	EnsureProfile(ctx context.Context, userID, email string)
}
