package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	svc "github.com/talentlink/talentlink/internal/http/services/auth"
)

type fakeCallbackService struct {
	calls  []svc.CallbackRequest
	result *svc.CallbackResult
}

func (f *fakeCallbackService) Callback(_ context.Context, req svc.CallbackRequest) *svc.CallbackResult {
	f.calls = append(f.calls, req)
	if f.result != nil {
		return f.result
	}
	return &svc.CallbackResult{Location: "/dashboard", Outcome: "success", Authenticated: true}
}

func newController(t *testing.T, service svc.CallbackService) *CallbackController {
	t.Helper()
	c, err := NewCallbackController(CallbackControllerDeps{
		Service:            service,
		CanonicalOrigin:    "https://app.talentlink.io",
		LegacyHosts:        []string{"talentlink.vercel.app"},
		ReferralCookieName: "tl_ref",
	})
	require.NoError(t, err)
	return c
}

func referralCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "tl_ref" {
			return ck
		}
	}
	return nil
}

func TestCallback_SuccessRedirect(t *testing.T) {
	fake := &fakeCallbackService{}
	c := newController(t, fake)

	req := httptest.NewRequest(http.MethodGet, "https://app.talentlink.io/auth/callback?token_hash=h&type=magiclink&next=/settings", nil)
	rec := httptest.NewRecorder()
	c.Callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	require.Len(t, fake.calls, 1)
	got := fake.calls[0]
	require.Equal(t, "h", got.Verify.TokenHash)
	require.Equal(t, "magiclink", got.Verify.LinkType)
	require.Equal(t, "/settings", got.Next)
}

func TestCallback_ClearsReferralCookieAlways(t *testing.T) {
	cases := []*svc.CallbackResult{
		{Location: "/dashboard", Outcome: "success", Authenticated: true},
		{Location: svc.LoginPath + "?error=x", Outcome: "expired"},
	}
	for _, result := range cases {
		c := newController(t, &fakeCallbackService{result: result})
		req := httptest.NewRequest(http.MethodGet, "https://app.talentlink.io/auth/callback", nil)
		rec := httptest.NewRecorder()
		c.Callback(rec, req)

		ck := referralCookie(t, rec)
		require.NotNil(t, ck, "outcome %s must clear cookie", result.Outcome)
		require.Equal(t, "", ck.Value)
		require.True(t, ck.MaxAge < 0)
	}
}

func TestCallback_LegacyHostBouncedBeforeVerification(t *testing.T) {
	fake := &fakeCallbackService{}
	c := newController(t, fake)

	req := httptest.NewRequest(http.MethodGet, "https://talentlink.vercel.app/auth/callback?token_hash=h&type=magiclink&next=/settings", nil)
	rec := httptest.NewRecorder()
	c.Callback(rec, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	require.Equal(t,
		"https://app.talentlink.io/auth/callback?token_hash=h&type=magiclink&next=/settings",
		rec.Header().Get("Location"),
	)
	// the one-shot token must not have been spent
	require.Empty(t, fake.calls)
	require.NotNil(t, referralCookie(t, rec))
}

func TestCallback_UnknownHostNotBounced(t *testing.T) {
	fake := &fakeCallbackService{}
	c := newController(t, fake)

	req := httptest.NewRequest(http.MethodGet, "https://other.example.com/auth/callback?code=x", nil)
	rec := httptest.NewRecorder()
	c.Callback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, fake.calls, 1)
}

func TestCallback_ReferralSourcesForwarded(t *testing.T) {
	fake := &fakeCallbackService{}
	c := newController(t, fake)

	req := httptest.NewRequest(http.MethodGet, "https://app.talentlink.io/auth/callback?code=x&referral=abcd1234", nil)
	req.AddCookie(&http.Cookie{Name: "tl_ref", Value: "eeee1234"})
	rec := httptest.NewRecorder()
	c.Callback(rec, req)

	require.Len(t, fake.calls, 1)
	got := fake.calls[0]
	require.Equal(t, "abcd1234", got.ReferralURLCode)
	require.Equal(t, "eeee1234", got.ReferralCookieCode)
}

func TestCallback_PopupFlagParsed(t *testing.T) {
	fake := &fakeCallbackService{}
	c := newController(t, fake)

	req := httptest.NewRequest(http.MethodGet, "https://app.talentlink.io/auth/callback?code=x&popup=true", nil)
	c.Callback(httptest.NewRecorder(), req)
	require.True(t, fake.calls[0].Popup)

	req = httptest.NewRequest(http.MethodGet, "https://app.talentlink.io/auth/callback?code=x&popup=1", nil)
	c.Callback(httptest.NewRecorder(), req)
	require.False(t, fake.calls[1].Popup)
}

func TestCallback_MethodNotAllowed(t *testing.T) {
	c := newController(t, &fakeCallbackService{})

	req := httptest.NewRequest(http.MethodPost, "https://app.talentlink.io/auth/callback", nil)
	rec := httptest.NewRecorder()
	c.Callback(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
