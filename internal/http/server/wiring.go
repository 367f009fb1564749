// Package server wires configuration, storage, caching and the HTTP
// surface into a single handler. It is the composition root: everything
// below it receives its dependencies explicitly.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/talentlink/talentlink/internal/authclient"
	"github.com/talentlink/talentlink/internal/cache"
	memcache "github.com/talentlink/talentlink/internal/cache/memory"
	redcache "github.com/talentlink/talentlink/internal/cache/redis"
	"github.com/talentlink/talentlink/internal/config"
	authctrl "github.com/talentlink/talentlink/internal/http/controllers/auth"
	healthctrl "github.com/talentlink/talentlink/internal/http/controllers/health"
	oauthctrl "github.com/talentlink/talentlink/internal/http/controllers/oauth"
	"github.com/talentlink/talentlink/internal/http/router"
	authsvc "github.com/talentlink/talentlink/internal/http/services/auth"
	oauthsvc "github.com/talentlink/talentlink/internal/http/services/oauth"
	"github.com/talentlink/talentlink/internal/metrics"
	ghclient "github.com/talentlink/talentlink/internal/oauth/github"
	"github.com/talentlink/talentlink/internal/rate"
	"github.com/talentlink/talentlink/internal/security/secretbox"
	"github.com/talentlink/talentlink/internal/security/statetoken"
	"github.com/talentlink/talentlink/internal/store/pg"
)

// BuildHandler assembles the full HTTP handler from cfg. The returned
// cleanup function closes the database pool and any cache connections;
// call it after the server stops.
func BuildHandler(ctx context.Context, cfg *config.Config) (http.Handler, func() error, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var closers []func() error
	closers = append(closers, func() error { store.Close(); return nil })
	cleanup := func() error {
		var firstErr error
		for _, c := range closers {
			if err := c(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	resultCache, redisCache, err := openCache(cfg)
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}
	if redisCache != nil {
		closers = append(closers, redisCache.Close)
	}

	box, err := secretbox.New(cfg.Security.TokenCryptKey)
	if err != nil {
		_ = cleanup()
		return nil, nil, fmt.Errorf("server: security.token_crypt_key: %w", err)
	}

	provider := authclient.NewHTTP(cfg.AuthProvider.BaseURL, cfg.AuthProvider.ServiceKey, cfg.AuthProvider.Timeout)

	gh := ghclient.New(
		cfg.Providers.GitHub.ClientID,
		cfg.Providers.GitHub.ClientSecret,
		cfg.Providers.GitHub.RedirectURL,
	)
	if len(cfg.Providers.GitHub.Scopes) > 0 {
		gh.Scopes = cfg.Providers.GitHub.Scopes
	}
	stateCodec := statetoken.New(cfg.Providers.GitHub.StateSecret, cfg.State.TTL)

	verify := authsvc.NewVerifyService(authsvc.VerifyDeps{
		Provider: provider,
		Cache:    resultCache,
	})
	provision := authsvc.NewProvisionService(authsvc.ProvisionDeps{
		Profiles:    store.Profiles,
		Credentials: store.Credentials,
	})
	referral := authsvc.NewReferralService(authsvc.ReferralDeps{
		Referrals: store.Referrals,
	})
	link := oauthsvc.NewLinkService(oauthsvc.LinkDeps{
		Connections: store.Connections,
		Box:         box,
	})
	connect := oauthsvc.NewConnectService(oauthsvc.ConnectDeps{
		Codec:       stateCodec,
		GitHub:      gh,
		Connections: store.Connections,
		Box:         box,
	})

	tasks := authsvc.StandardPostAuthTasks(provision, referral)
	tasks = append(tasks, authsvc.PostAuthTask{
		Name: "connection_sync",
		Run: func(ctx context.Context, in authsvc.PostAuthInput) {
			link.SyncConnection(ctx, in.Principal)
		},
	})

	callback := authsvc.NewCallbackService(authsvc.CallbackDeps{
		Verifier: verify,
		PostAuth: tasks,
	})

	callbackCtrl, err := authctrl.NewCallbackController(authctrl.CallbackControllerDeps{
		Service:            callback,
		CanonicalOrigin:    cfg.Origin.BaseURL,
		LegacyHosts:        cfg.Origin.LegacyHosts,
		ReferralCookieName: cfg.Referral.CookieName,
	})
	if err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	pingers := []healthctrl.Pinger{{Name: "postgres", Ping: store.Ping}}
	if redisCache != nil {
		pingers = append(pingers, healthctrl.Pinger{
			Name: "redis",
			Ping: func(ctx context.Context) error {
				return redisCache.Raw().Ping(ctx).Err()
			},
		})
	}

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		_ = cleanup()
		return nil, nil, err
	}

	handler := router.New(router.Deps{
		Callback: callbackCtrl,
		Session:  authctrl.NewSessionController(cfg.AuthProvider.JWTSecret),
		Success:  authctrl.NewSuccessController(),
		Connect:  oauthctrl.NewConnectController(connect, cfg.AuthProvider.JWTSecret),
		Health:   healthctrl.NewController(pingers...),
		Limiter:  buildLimiter(cfg, redisCache),
	})
	return handler, cleanup, nil
}

func openStore(ctx context.Context, cfg *config.Config) (*pg.Store, error) {
	opts := pg.Options{MaxConns: cfg.Storage.Postgres.MaxOpenConns}
	if cfg.Storage.Postgres.ConnMaxLifetime != "" {
		d, err := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
		if err != nil {
			return nil, fmt.Errorf("server: storage.postgres.conn_max_lifetime: %w", err)
		}
		opts.ConnMaxLifetime = d
	}
	return pg.New(ctx, cfg.Storage.DSN, opts)
}

// openCache returns the byte cache used for verification results. The
// second return value is non-nil only for the redis kind so callers can
// reuse the connection for rate limiting and readiness checks.
func openCache(cfg *config.Config) (cache.Cache, *redcache.Client, error) {
	switch cfg.Cache.Kind {
	case "redis":
		c, err := redcache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix, 0)
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case "memory":
		ttl, _ := time.ParseDuration(cfg.Cache.Memory.DefaultTTL)
		return memcache.New(ttl, cfg.Cache.Memory.MaxEntries), nil, nil
	default:
		return nil, nil, fmt.Errorf("server: unknown cache.kind %q", cfg.Cache.Kind)
	}
}

func buildLimiter(cfg *config.Config, redisCache *redcache.Client) rate.Limiter {
	if !cfg.Rate.Enabled {
		return nil
	}
	window, _ := time.ParseDuration(cfg.Rate.Callback.Window)
	if redisCache != nil {
		return rate.NewRedisLimiter(redisCache.Raw(), "rate:callback", cfg.Rate.Callback.Limit, window)
	}
	return rate.NewMemoryLimiter(cfg.Rate.Callback.Limit, window)
}
