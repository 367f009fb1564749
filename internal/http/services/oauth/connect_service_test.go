package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ghclient "github.com/talentlink/talentlink/internal/oauth/github"
	"github.com/talentlink/talentlink/internal/security/statetoken"
)

func newConnect(t *testing.T, srv *httptest.Server) (ConnectService, *statetoken.Codec, *fakeConnections) {
	t.Helper()
	codec := statetoken.New("github-state-secret", 10*time.Minute)
	gh := ghclient.New("cid", "csecret", "https://app.example.com/api/oauth/github/callback")
	if srv != nil {
		gh.AuthBase = srv.URL
		gh.APIBase = srv.URL
	}
	conns := newFakeConnections()
	svc := NewConnectService(ConnectDeps{
		Codec:       codec,
		GitHub:      gh,
		Connections: conns,
		Box:         testBox(t),
	})
	return svc, codec, conns
}

func TestConnectStart_IssuesSignedState(t *testing.T) {
	svc, codec, _ := newConnect(t, nil)

	raw, err := svc.Start(context.Background(), "user-1")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "github.com", u.Host)

	payload, err := codec.Decode(u.Query().Get("state"))
	require.NoError(t, err)
	require.Equal(t, "user-1", payload.UserID)
	require.NotEmpty(t, payload.Nonce)
}

func TestConnectComplete_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/login/oauth/access_token":
			_, _ = w.Write([]byte(`{"access_token":"gho_abc","token_type":"bearer","scope":"read:user"}`))
		case "/user":
			_, _ = w.Write([]byte(`{"id":42,"login":"octocat","name":"Octo Cat","email":"octo@example.com","html_url":"https://github.com/octocat"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc, codec, conns := newConnect(t, srv)
	state, err := codec.Encode(statetoken.Payload{UserID: "user-1"})
	require.NoError(t, err)

	userID, err := svc.Complete(context.Background(), CompleteRequest{Code: "the-code", State: state})
	require.NoError(t, err)
	require.Equal(t, "user-1", userID)

	row := conns.rows["user-1|github"]
	require.Equal(t, "octocat", row.Username)
	require.Equal(t, "read:user", row.Scope)
	require.NotEqual(t, "gho_abc", row.AccessToken)
}

func TestConnectComplete_MissingParams(t *testing.T) {
	svc, codec, _ := newConnect(t, nil)
	state, _ := codec.Encode(statetoken.Payload{UserID: "user-1"})

	_, err := svc.Complete(context.Background(), CompleteRequest{State: state})
	require.ErrorIs(t, err, ErrConnectMissingParams)

	_, err = svc.Complete(context.Background(), CompleteRequest{Code: "c"})
	require.ErrorIs(t, err, ErrConnectMissingParams)
}

func TestConnectComplete_BadStateVariants(t *testing.T) {
	svc, _, conns := newConnect(t, nil)

	_, err := svc.Complete(context.Background(), CompleteRequest{Code: "c", State: "garbage"})
	require.ErrorIs(t, err, ErrConnectInvalidState)

	// signed with a different secret
	other := statetoken.New("other-secret", 10*time.Minute)
	forged, _ := other.Encode(statetoken.Payload{UserID: "user-1"})
	_, err = svc.Complete(context.Background(), CompleteRequest{Code: "c", State: forged})
	require.ErrorIs(t, err, ErrConnectInvalidState)

	require.Equal(t, 0, conns.upserts)
}

func TestConnectComplete_ExpiredState(t *testing.T) {
	svc, _, _ := newConnect(t, nil)

	past := time.Now().Add(-11 * time.Minute)
	old := statetoken.New("github-state-secret", 10*time.Minute).WithClock(func() time.Time { return past })
	state, err := old.Encode(statetoken.Payload{UserID: "user-1"})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), CompleteRequest{Code: "c", State: state})
	require.ErrorIs(t, err, ErrConnectStateExpired)
}

func TestConnectComplete_UpstreamErrorPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"access_denied","error_description":"The user denied the request."}`))
	}))
	defer srv.Close()

	svc, codec, _ := newConnect(t, srv)
	state, _ := codec.Encode(statetoken.Payload{UserID: "user-1"})

	_, err := svc.Complete(context.Background(), CompleteRequest{Code: "c", State: state})
	var ue *ghclient.UpstreamError
	require.ErrorAs(t, err, &ue)
	require.Equal(t, "access_denied", ue.Code)
}
