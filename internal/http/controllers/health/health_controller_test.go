package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHealthz_AlwaysOK(t *testing.T) {
	ctrl := NewController()

	rec := httptest.NewRecorder()
	ctrl.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz_AllUp(t *testing.T) {
	ctrl := NewController(
		Pinger{Name: "postgres", Ping: func(ctx context.Context) error { return nil }},
		Pinger{Name: "redis", Ping: func(ctx context.Context) error { return nil }},
	)

	rec := httptest.NewRecorder()
	ctrl.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, map[string]string{"postgres": "ok", "redis": "ok"}, status)
}

func TestReadyz_OneDown(t *testing.T) {
	ctrl := NewController(
		Pinger{Name: "postgres", Ping: func(ctx context.Context) error { return nil }},
		Pinger{Name: "redis", Ping: func(ctx context.Context) error { return errors.New("refused") }},
	)

	rec := httptest.NewRecorder()
	ctrl.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "down", status["redis"])
	require.Equal(t, "ok", status["postgres"])
}
