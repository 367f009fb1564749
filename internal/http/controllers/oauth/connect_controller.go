package oauth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/talentlink/talentlink/internal/authclient"
	httperrors "github.com/talentlink/talentlink/internal/http/errors"
	"github.com/talentlink/talentlink/internal/http/helpers"
	svc "github.com/talentlink/talentlink/internal/http/services/oauth"
	ghclient "github.com/talentlink/talentlink/internal/oauth/github"
	"github.com/talentlink/talentlink/internal/observability/logger"
)

// settingsPath is where the linking flow lands, success or failure.
const settingsPath = "/settings"

// ConnectController handles the GitHub account-linking endpoints.
type ConnectController struct {
	service   svc.ConnectService
	jwtSecret string
}

// NewConnectController creates a ConnectController.
func NewConnectController(service svc.ConnectService, jwtSecret string) *ConnectController {
	return &ConnectController{service: service, jwtSecret: jwtSecret}
}

// Start handles GET /api/oauth/github/start. The caller must present a
// provider access token; the user it names is bound into the signed state.
func (c *ConnectController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ConnectController.Start"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	token := helpers.BearerToken(r)
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("bearer token required"))
		return
	}
	claims, err := authclient.ParseAccessToken(token, c.jwtSecret)
	if err != nil {
		log.Warn("access token rejected", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
		return
	}

	authorizeURL, err := c.service.Start(ctx, claims.UserID)
	if err != nil {
		log.Error("linking start failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
		return
	}

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// Callback handles GET /api/oauth/github/callback. Failures are reported
// through a github_error query parameter on the settings redirect, drawn
// from a fixed vocabulary plus GitHub's own code verbatim.
func (c *ConnectController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ConnectController.Callback"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	q := r.URL.Query()

	// The user may have denied the request at GitHub; the code never
	// reaches us in that case.
	if upstream := strings.TrimSpace(q.Get("error")); upstream != "" {
		log.Warn("github returned error", logger.String("upstream_code", upstream))
		redirectWithError(w, r, upstream)
		return
	}

	_, err := c.service.Complete(ctx, svc.CompleteRequest{
		Code:  strings.TrimSpace(q.Get("code")),
		State: strings.TrimSpace(q.Get("state")),
	})
	if err != nil {
		redirectWithError(w, r, connectErrorCode(err))
		return
	}

	http.Redirect(w, r, settingsPath+"?github=connected", http.StatusFound)
}

// connectErrorCode maps service failures onto the github_error vocabulary.
func connectErrorCode(err error) string {
	var ue *ghclient.UpstreamError
	switch {
	case errors.Is(err, svc.ErrConnectMissingParams):
		return "missing_params"
	case errors.Is(err, svc.ErrConnectInvalidState):
		return "invalid_state"
	case errors.Is(err, svc.ErrConnectStateExpired):
		return "state_expired"
	case errors.As(err, &ue):
		return ue.Code
	default:
		return "exchange_failed"
	}
}

func redirectWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, settingsPath+"?github_error="+url.QueryEscape(code), http.StatusFound)
}
