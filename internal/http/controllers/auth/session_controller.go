package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/talentlink/talentlink/internal/authclient"
	dto "github.com/talentlink/talentlink/internal/http/dto/auth"
	httperrors "github.com/talentlink/talentlink/internal/http/errors"
	"github.com/talentlink/talentlink/internal/http/helpers"
	"github.com/talentlink/talentlink/internal/observability/logger"
)

// SessionController answers "who is this bearer" for provider-issued access
// tokens, used by the desktop client after completing a callback.
type SessionController struct {
	jwtSecret string
}

// NewSessionController creates a SessionController.
func NewSessionController(jwtSecret string) *SessionController {
	return &SessionController{jwtSecret: jwtSecret}
}

// Session handles GET /auth/session.
func (c *SessionController) Session(w http.ResponseWriter, r *http.Request) {
	log := logger.From(r.Context()).With(logger.Layer("controller"), logger.Op("SessionController.Session"))

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
	if !claims.ExpiresAt.IsZero() && claims.ExpiresAt.Before(time.Now()) {
		httperrors.WriteError(w, httperrors.ErrTokenExpired)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(dto.SessionResponse{
		UserID:    claims.UserID,
		Email:     claims.Email,
		SessionID: claims.SessionID,
		ExpiresAt: claims.ExpiresAt,
	})
}
