package oauth

import (
	"context"
	"fmt"

	"github.com/talentlink/talentlink/internal/domain/repository"
	"github.com/talentlink/talentlink/internal/http/services/auth"
	"github.com/talentlink/talentlink/internal/metrics"
	"github.com/talentlink/talentlink/internal/observability/logger"
	"github.com/talentlink/talentlink/internal/security/secretbox"
)

// LinkDeps contains dependencies for the link service.
type LinkDeps struct {
	Connections repository.ConnectionRepository
	// Box encrypts access tokens before they reach the store.
	Box *secretbox.Box
}

type linkService struct {
	connections repository.ConnectionRepository
	box         *secretbox.Box
}

// NewLinkService creates a LinkService.
func NewLinkService(d LinkDeps) LinkService {
	return &linkService{connections: d.Connections, box: d.Box}
}

func (s *linkService) SyncConnection(ctx context.Context, principal *auth.Principal) {
	user := principal.User
	identity := user.IdentityFor(GitHubProvider)
	if identity == nil {
		return
	}

	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("oauth.link"),
		logger.UserID(user.ID),
		logger.Provider(GitHubProvider),
	)

	// The provider hands the third-party token over exactly once, at the
	// login that created it. Without it there is nothing to link.
	if principal.ProviderToken == "" {
		log.Debug("no provider token on session, skipping link")
		return
	}

	token, err := s.box.Encrypt(principal.ProviderToken)
	if err != nil {
		log.Warn("provider token encryption failed", logger.Err(err))
		metrics.ConnectionSyncs.WithLabelValues(GitHubProvider, "error").Inc()
		return
	}

	conn := repository.Connection{
		UserID:      user.ID,
		Provider:    GitHubProvider,
		AccessToken: token,
		TokenType:   "bearer",
		Scope:       identityString(identity.IdentityData, "scope"),
		Username:    identityString(identity.IdentityData, "user_name"),
		DisplayName: identityString(identity.IdentityData, "full_name"),
		AvatarURL:   identityString(identity.IdentityData, "avatar_url"),
		ProfileURL:  identityString(identity.IdentityData, "html_url"),
	}
	if conn.Username == "" {
		conn.Username = identityString(identity.IdentityData, "preferred_username")
	}
	if conn.DisplayName == "" {
		conn.DisplayName = identityString(identity.IdentityData, "name")
	}
	if conn.ProfileURL == "" && conn.Username != "" {
		conn.ProfileURL = fmt.Sprintf("https://github.com/%s", conn.Username)
	}

	created, err := s.connections.Upsert(ctx, conn)
	if err != nil {
		log.Warn("connection upsert failed", logger.Err(err))
		metrics.ConnectionSyncs.WithLabelValues(GitHubProvider, "error").Inc()
		return
	}

	result := "updated"
	if created {
		result = "created"
	}
	metrics.ConnectionSyncs.WithLabelValues(GitHubProvider, result).Inc()
	log.Info("github connection synced",
		logger.String("result", result),
		logger.String("username", conn.Username),
	)
}

func identityString(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}
