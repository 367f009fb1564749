package auth

import (
	"net/http"
	"net/url"
	"strings"

	httperrors "github.com/talentlink/talentlink/internal/http/errors"
	svc "github.com/talentlink/talentlink/internal/http/services/auth"
	"github.com/talentlink/talentlink/internal/observability/logger"
)

// CallbackController handles the authentication callback endpoint.
type CallbackController struct {
	service svc.CallbackService

	// canonical is the application origin redirects are built against.
	canonical *url.URL
	// legacyHosts are deprecated public domains. A callback arriving on one
	// of them is bounced to the canonical origin before any verification.
	legacyHosts map[string]struct{}

	cookieName string
}

// CallbackControllerDeps configures a CallbackController.
type CallbackControllerDeps struct {
	Service            svc.CallbackService
	CanonicalOrigin    string
	LegacyHosts        []string
	ReferralCookieName string
}

// NewCallbackController creates a CallbackController.
func NewCallbackController(d CallbackControllerDeps) (*CallbackController, error) {
	canonical, err := url.Parse(d.CanonicalOrigin)
	if err != nil {
		return nil, err
	}
	hosts := make(map[string]struct{}, len(d.LegacyHosts))
	for _, h := range d.LegacyHosts {
		hosts[strings.ToLower(h)] = struct{}{}
	}
	return &CallbackController{
		service:     d.Service,
		canonical:   canonical,
		legacyHosts: hosts,
		cookieName:  d.ReferralCookieName,
	}, nil
}

// Callback handles GET /auth/callback.
func (c *CallbackController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Callback"))

	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
		return
	}

	// Legacy-domain bounce happens before anything else: one-shot tokens
	// must never be spent on a host that cannot complete the flow.
	if target, ok := c.canonicalRedirect(r); ok {
		log.Info("bouncing legacy host to canonical origin",
			logger.String("host", r.Host),
		)
		c.clearReferralCookie(w)
		http.Redirect(w, r, target, http.StatusTemporaryRedirect)
		return
	}

	q := r.URL.Query()
	req := svc.CallbackRequest{
		Verify: svc.VerifyRequest{
			TokenHash: strings.TrimSpace(q.Get("token_hash")),
			Token:     strings.TrimSpace(q.Get("token")),
			LinkType:  strings.TrimSpace(q.Get("type")),
			Code:      strings.TrimSpace(q.Get("code")),
		},
		Next:               q.Get("next"),
		Popup:              q.Get("popup") == "true",
		ReferralURLCode:    referralFromQuery(q),
		ReferralCookieCode: c.referralFromCookie(r),
	}

	result := c.service.Callback(ctx, req)

	// The referral cookie never outlives one callback round trip, with or
	// without a code present, success or failure.
	c.clearReferralCookie(w)
	http.Redirect(w, r, result.Location, http.StatusFound)
}

// canonicalRedirect reports whether the request arrived on a legacy host,
// and if so the same path and query on the canonical origin.
func (c *CallbackController) canonicalRedirect(r *http.Request) (string, bool) {
	if c.canonical == nil || c.canonical.Host == "" {
		return "", false
	}
	host := strings.ToLower(r.Host)
	if host == strings.ToLower(c.canonical.Host) {
		return "", false
	}
	if _, ok := c.legacyHosts[host]; !ok {
		return "", false
	}

	target := *c.canonical
	target.Path = r.URL.Path
	target.RawQuery = r.URL.RawQuery
	return target.String(), true
}

func referralFromQuery(q url.Values) string {
	for _, name := range svc.ReferralParams {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return v
		}
	}
	return ""
}

func (c *CallbackController) referralFromCookie(r *http.Request) string {
	if c.cookieName == "" {
		return ""
	}
	ck, err := r.Cookie(c.cookieName)
	if err != nil {
		return ""
	}
	v, err := url.QueryUnescape(ck.Value)
	if err != nil {
		return ck.Value
	}
	return v
}

// clearReferralCookie expires the transient referral cookie. Matches the
// attributes it was set with (readable by the frontend, SameSite=Lax).
func (c *CallbackController) clearReferralCookie(w http.ResponseWriter) {
	if c.cookieName == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}
