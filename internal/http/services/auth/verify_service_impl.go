package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/talentlink/talentlink/internal/authclient"
	"github.com/talentlink/talentlink/internal/cache"
	"github.com/talentlink/talentlink/internal/observability/logger"
)

// VerifyDeps contains dependencies for the verify service.
type VerifyDeps struct {
	Provider authclient.Client
	// Cache holds recent successful verifications so a replayed one-shot
	// token (double-click, tab and popup racing) resolves to the same
	// Principal instead of a provider "already used" error.
	Cache     cache.Cache
	ResultTTL time.Duration
}

type verifyService struct {
	provider  authclient.Client
	cache     cache.Cache
	resultTTL time.Duration
	group     singleflight.Group
}

// NewVerifyService creates a VerifyService.
func NewVerifyService(d VerifyDeps) VerifyService {
	ttl := d.ResultTTL
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &verifyService{
		provider:  d.Provider,
		cache:     d.Cache,
		resultTTL: ttl,
	}
}

func (s *verifyService) Verify(ctx context.Context, req VerifyRequest) (*Principal, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("auth.verify"))

	switch req.SelectFlow() {
	case FlowToken:
		if _, ok := allowedLinkTypes[req.LinkType]; !ok {
			log.Warn("rejected link type", logger.String("type", req.LinkType))
			return nil, ErrInvalidLinkType
		}
		token := req.TokenHash
		if token == "" {
			token = req.Token
		}
		// the type is part of the key: the same token under another
		// allowed type is a distinct verification, not a replay
		return s.verifyOnce(ctx, "otp:"+req.LinkType+":"+token, FlowToken, func() (*Principal, error) {
			return s.verifyToken(ctx, token, req.LinkType)
		})

	case FlowCode:
		return s.verifyOnce(ctx, "code:"+req.Code, FlowCode, func() (*Principal, error) {
			return s.verifyCode(ctx, req.Code)
		})

	default:
		return nil, ErrMissingParameters
	}
}

// verifyOnce collapses concurrent verifications of the same one-shot secret
// and serves replays within the result TTL from cache.
func (s *verifyService) verifyOnce(ctx context.Context, secret string, flow Flow, fn func() (*Principal, error)) (*Principal, error) {
	key := resultKey(secret)

	if p, ok := s.cached(key); ok {
		return p, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if p, ok := s.cached(key); ok {
			return p, nil
		}
		p, err := fn()
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Principal), nil
}

func (s *verifyService) verifyToken(ctx context.Context, token, linkType string) (*Principal, error) {
	sess, err := s.provider.VerifyOTP(ctx, token, linkType)
	if err != nil {
		return nil, classifyProviderError(err, FlowToken)
	}
	if sess.User == nil {
		return nil, ErrAuthenticationFailed
	}
	return &Principal{
		User:          sess.User,
		AccessToken:   sess.AccessToken,
		ProviderToken: sess.ProviderToken,
		Flow:          FlowToken,
	}, nil
}

func (s *verifyService) verifyCode(ctx context.Context, code string) (*Principal, error) {
	sess, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, classifyProviderError(err, FlowCode)
	}

	user := sess.User
	if user == nil && sess.AccessToken != "" {
		user, err = s.provider.GetUser(ctx, sess.AccessToken)
		if err != nil {
			return nil, classifyProviderError(err, FlowCode)
		}
	}
	if user == nil {
		return nil, ErrAuthenticationFailed
	}

	return &Principal{
		User:          user,
		AccessToken:   sess.AccessToken,
		ProviderToken: sess.ProviderToken,
		Flow:          FlowCode,
	}, nil
}

func (s *verifyService) cached(key string) (*Principal, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	var p Principal
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (s *verifyService) store(ctx context.Context, key string, p *Principal) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		logger.From(ctx).Warn("auth result not cacheable", logger.Err(err))
		return
	}
	s.cache.Set(key, b, s.resultTTL)
}

// resultKey hashes the one-shot secret so the raw token never sits in cache
// memory or a shared Redis.
func resultKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return "authres:" + hex.EncodeToString(sum[:])
}
