package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentlink/talentlink/internal/rate"
)

func okHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func TestWithRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := ChainFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}, WithRequestID())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get("X-Request-ID"))
}

func TestWithRequestID_ReusesIncoming(t *testing.T) {
	h := ChainFunc(okHandler(), WithRequestID())

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestWithRecover_AnswersInternalError(t *testing.T) {
	h := ChainFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, WithRecover())

	rec := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "INTERNAL_SERVER_ERROR")
}

func TestWithNoStore_SetsCacheControl(t *testing.T) {
	h := ChainFunc(okHandler(), WithNoStore())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth/session", nil))

	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestWithRateLimit_BlocksOverLimit(t *testing.T) {
	limiter := rate.NewMemoryLimiter(1, time.Minute)
	h := ChainFunc(okHandler(), WithRateLimit(RateLimitConfig{
		Limiter: limiter,
		KeyFunc: IPOnlyRateKey,
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/callback", nil)
	req.RemoteAddr = "10.0.0.1:1234"

	first := httptest.NewRecorder()
	h.ServeHTTP(first, req)
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.NotEmpty(t, second.Header().Get("Retry-After"))
}

func TestWithRateLimit_WhitelistSkipsLimiter(t *testing.T) {
	limiter := rate.NewMemoryLimiter(1, time.Minute)
	h := ChainFunc(okHandler(), WithRateLimit(RateLimitConfig{
		Limiter:   limiter,
		KeyFunc:   IPOnlyRateKey,
		Whitelist: []string{"/healthz"},
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.2:1234"

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestClientIP_PrefersForwardedFor(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "127.0.0.1:9999"
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")

	require.Equal(t, "203.0.113.7", clientIP(req))
}
