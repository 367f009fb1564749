package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/talentlink/talentlink/internal/domain/repository"
	"github.com/talentlink/talentlink/internal/metrics"
	ghclient "github.com/talentlink/talentlink/internal/oauth/github"
	"github.com/talentlink/talentlink/internal/observability/logger"
	"github.com/talentlink/talentlink/internal/security/secretbox"
	"github.com/talentlink/talentlink/internal/security/statetoken"
)

// ConnectDeps contains dependencies for the connect service.
type ConnectDeps struct {
	// Codec signs the OAuth state with the GitHub-specific secret.
	Codec       *statetoken.Codec
	GitHub      *ghclient.Client
	Connections repository.ConnectionRepository
	Box         *secretbox.Box
}

type connectService struct {
	codec       *statetoken.Codec
	github      *ghclient.Client
	connections repository.ConnectionRepository
	box         *secretbox.Box
}

// NewConnectService creates a ConnectService.
func NewConnectService(d ConnectDeps) ConnectService {
	return &connectService{
		codec:       d.Codec,
		github:      d.GitHub,
		connections: d.Connections,
		box:         d.Box,
	}
}

func (s *connectService) Start(ctx context.Context, userID string) (string, error) {
	state, err := s.codec.Encode(statetoken.Payload{UserID: userID})
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	logger.From(ctx).Info("github linking started",
		logger.Layer("service"),
		logger.Component("oauth.connect"),
		logger.UserID(userID),
	)
	return s.github.AuthURL(state), nil
}

func (s *connectService) Complete(ctx context.Context, req CompleteRequest) (string, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("oauth.connect"))

	if req.Code == "" || req.State == "" {
		return "", ErrConnectMissingParams
	}

	payload, err := s.codec.Decode(req.State)
	if err != nil {
		if errors.Is(err, statetoken.ErrExpired) {
			log.Warn("state expired")
			return "", ErrConnectStateExpired
		}
		// Format and signature failures surface identically.
		log.Warn("state rejected", logger.Err(err))
		return "", ErrConnectInvalidState
	}
	log = log.With(logger.UserID(payload.UserID))

	tok, err := s.github.ExchangeCode(ctx, req.Code)
	if err != nil {
		var ue *ghclient.UpstreamError
		if errors.As(err, &ue) {
			log.Warn("github rejected code", logger.String("upstream_code", ue.Code))
			return payload.UserID, err
		}
		log.Warn("code exchange failed", logger.Err(err))
		return payload.UserID, fmt.Errorf("%w: %v", ErrConnectExchange, err)
	}

	profile, err := s.github.FetchProfile(ctx, tok.AccessToken)
	if err != nil {
		log.Warn("profile fetch failed", logger.Err(err))
		return payload.UserID, fmt.Errorf("%w: %v", ErrConnectExchange, err)
	}

	sealed, err := s.box.Encrypt(tok.AccessToken)
	if err != nil {
		log.Warn("token encryption failed", logger.Err(err))
		return payload.UserID, fmt.Errorf("%w: %v", ErrConnectExchange, err)
	}

	created, err := s.connections.Upsert(ctx, repository.Connection{
		UserID:      payload.UserID,
		Provider:    GitHubProvider,
		AccessToken: sealed,
		TokenType:   tok.TokenType,
		Scope:       tok.Scope,
		Username:    profile.Login,
		DisplayName: profile.Name,
		AvatarURL:   profile.AvatarURL,
		ProfileURL:  profile.HTMLURL,
	})
	if err != nil {
		log.Warn("connection upsert failed", logger.Err(err))
		metrics.ConnectionSyncs.WithLabelValues(GitHubProvider, "error").Inc()
		return payload.UserID, fmt.Errorf("%w: %v", ErrConnectExchange, err)
	}

	result := "updated"
	if created {
		result = "created"
	}
	metrics.ConnectionSyncs.WithLabelValues(GitHubProvider, result).Inc()
	log.Info("github connection linked",
		logger.String("result", result),
		logger.String("username", profile.Login),
	)
	return payload.UserID, nil
}
