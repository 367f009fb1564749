// Package router assembles the HTTP surface of the identity service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authctrl "github.com/talentlink/talentlink/internal/http/controllers/auth"
	healthctrl "github.com/talentlink/talentlink/internal/http/controllers/health"
	oauthctrl "github.com/talentlink/talentlink/internal/http/controllers/oauth"
	httperrors "github.com/talentlink/talentlink/internal/http/errors"
	mw "github.com/talentlink/talentlink/internal/http/middlewares"
	"github.com/talentlink/talentlink/internal/rate"
)

// Deps contains everything the router mounts.
type Deps struct {
	Callback *authctrl.CallbackController
	Session  *authctrl.SessionController
	Success  *authctrl.SuccessController
	Connect  *oauthctrl.ConnectController
	Health   *healthctrl.Controller

	// Limiter guards the callback endpoints per client IP. Nil disables it.
	Limiter rate.Limiter
}

// New builds the router. Auth endpoints get the full chain (recover,
// request id, no-store, rate limit, logging); operational endpoints stay
// lean.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	authChain := func(h http.HandlerFunc) http.Handler {
		chain := []mw.Middleware{
			mw.WithRecover(),
			mw.WithRequestID(),
			mw.WithNoStore(),
		}
		if d.Limiter != nil {
			chain = append(chain, mw.WithRateLimit(mw.RateLimitConfig{
				Limiter: d.Limiter,
				KeyFunc: mw.IPOnlyRateKey,
			}))
		}
		chain = append(chain, mw.WithLogging())
		return mw.ChainFunc(h, chain...)
	}

	plainChain := func(h http.HandlerFunc) http.Handler {
		return mw.ChainFunc(h, mw.WithRecover(), mw.WithRequestID(), mw.WithLogging())
	}

	r.Method(http.MethodGet, "/auth/callback", authChain(d.Callback.Callback))
	r.Method(http.MethodGet, "/auth/callback-success", authChain(d.Success.Success))
	r.Method(http.MethodGet, "/auth/session", authChain(d.Session.Session))

	r.Method(http.MethodGet, "/api/oauth/github/start", authChain(d.Connect.Start))
	r.Method(http.MethodGet, "/api/oauth/github/callback", authChain(d.Connect.Callback))

	r.Method(http.MethodGet, "/healthz", plainChain(d.Health.Healthz))
	r.Method(http.MethodGet, "/readyz", plainChain(d.Health.Readyz))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	return r
}
