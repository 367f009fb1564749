package oauth

import (
	"context"

	"github.com/talentlink/talentlink/internal/http/services/auth"
)

// GitHubProvider is the provider name used on connection rows and in the
// provider identity list.
const GitHubProvider = "github"

// LinkService captures third-party connections as a side effect of login.
type LinkService interface {
	// SyncConnection upserts the GitHub connection for a verified principal.
	// No-op when the login did not come through GitHub or carried no
	// provider token. Never fails the caller; linking is a convenience,
	// not a requirement for login.
	SyncConnection(ctx context.Context, principal *auth.Principal)
}
