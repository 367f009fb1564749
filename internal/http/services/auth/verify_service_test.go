package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talentlink/talentlink/internal/authclient"
	"github.com/talentlink/talentlink/internal/cache/memory"
)

type fakeProvider struct {
	mu            sync.Mutex
	verifyCalls   int
	exchangeCalls int

	verifyFn   func(token, linkType string) (*authclient.Session, error)
	exchangeFn func(code string) (*authclient.Session, error)
	getUserFn  func(accessToken string) (*authclient.User, error)
}

func (f *fakeProvider) VerifyOTP(_ context.Context, token, linkType string) (*authclient.Session, error) {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()
	return f.verifyFn(token, linkType)
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (*authclient.Session, error) {
	f.mu.Lock()
	f.exchangeCalls++
	f.mu.Unlock()
	return f.exchangeFn(code)
}

func (f *fakeProvider) GetUser(_ context.Context, accessToken string) (*authclient.User, error) {
	if f.getUserFn == nil {
		return nil, errors.New("unexpected GetUser call")
	}
	return f.getUserFn(accessToken)
}

func okSession() *authclient.Session {
	return &authclient.Session{
		AccessToken: "at",
		User:        &authclient.User{ID: "user-1", Email: "ada@example.com"},
	}
}

func newVerify(p *fakeProvider) VerifyService {
	return NewVerifyService(VerifyDeps{
		Provider:  p,
		Cache:     memory.New(time.Minute, 100),
		ResultTTL: time.Minute,
	})
}

func TestVerify_TokenFlowSuccess(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(token, linkType string) (*authclient.Session, error) {
			require.Equal(t, "hash-1", token)
			require.Equal(t, "magiclink", linkType)
			return okSession(), nil
		},
	}

	got, err := newVerify(p).Verify(context.Background(), VerifyRequest{TokenHash: "hash-1", LinkType: "magiclink"})
	require.NoError(t, err)
	require.Equal(t, "user-1", got.User.ID)
	require.Equal(t, FlowToken, got.Flow)
}

func TestVerify_LegacyTokenParamFallback(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(token, _ string) (*authclient.Session, error) {
			require.Equal(t, "legacy-tok", token)
			return okSession(), nil
		},
	}

	_, err := newVerify(p).Verify(context.Background(), VerifyRequest{Token: "legacy-tok", LinkType: "signup"})
	require.NoError(t, err)
}

func TestVerify_BogusLinkTypeNeverCallsProvider(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(string, string) (*authclient.Session, error) {
			t.Fatal("provider must not be called for a bogus link type")
			return nil, nil
		},
	}

	_, err := newVerify(p).Verify(context.Background(), VerifyRequest{TokenHash: "h", LinkType: "bogus"})
	require.ErrorIs(t, err, ErrInvalidLinkType)
	require.Equal(t, 0, p.verifyCalls)
}

func TestVerify_NoParams(t *testing.T) {
	_, err := newVerify(&fakeProvider{}).Verify(context.Background(), VerifyRequest{})
	require.ErrorIs(t, err, ErrMissingParameters)
}

func TestVerify_ProviderErrorClassification(t *testing.T) {
	cases := []struct {
		name string
		err  *authclient.APIError
		want error
	}{
		{"otp expired code", &authclient.APIError{Status: http.StatusForbidden, Code: "otp_expired", Message: "Email link is invalid or has expired"}, ErrExpired},
		{"expired message", &authclient.APIError{Status: http.StatusUnauthorized, Message: "Token has expired"}, ErrExpired},
		{"already used", &authclient.APIError{Status: http.StatusUnauthorized, Message: "Token has already been used"}, ErrAlreadyUsedOrInvalid},
		{"otp disabled", &authclient.APIError{Status: http.StatusForbidden, Code: "otp_disabled", Message: "Signups not allowed for otp"}, ErrAlreadyUsedOrInvalid},
		{"unclassified", &authclient.APIError{Status: http.StatusBadRequest, Message: "Something odd"}, ErrAuthenticationFailed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &fakeProvider{
				verifyFn: func(string, string) (*authclient.Session, error) { return nil, tc.err },
			}
			_, err := newVerify(p).Verify(context.Background(), VerifyRequest{TokenHash: "h-" + tc.name, LinkType: "recovery"})
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestVerify_TokenFlowNoUser(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(string, string) (*authclient.Session, error) {
			return &authclient.Session{AccessToken: "at"}, nil
		},
	}
	_, err := newVerify(p).Verify(context.Background(), VerifyRequest{TokenHash: "h", LinkType: "email"})
	require.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestVerify_CodeFlowSuccess(t *testing.T) {
	p := &fakeProvider{
		exchangeFn: func(code string) (*authclient.Session, error) {
			require.Equal(t, "code-1", code)
			return okSession(), nil
		},
	}
	got, err := newVerify(p).Verify(context.Background(), VerifyRequest{Code: "code-1"})
	require.NoError(t, err)
	require.Equal(t, FlowCode, got.Flow)
}

func TestVerify_CodeFlowInvalidGrantIsExpired(t *testing.T) {
	p := &fakeProvider{
		exchangeFn: func(string) (*authclient.Session, error) {
			return nil, &authclient.APIError{Status: http.StatusBadRequest, Code: "invalid_grant", Message: "Invalid grant"}
		},
	}
	_, err := newVerify(p).Verify(context.Background(), VerifyRequest{Code: "stale"})
	require.ErrorIs(t, err, ErrExpired)
}

func TestVerify_CodeFlowFetchesUserWhenMissing(t *testing.T) {
	p := &fakeProvider{
		exchangeFn: func(string) (*authclient.Session, error) {
			return &authclient.Session{AccessToken: "at"}, nil
		},
		getUserFn: func(accessToken string) (*authclient.User, error) {
			require.Equal(t, "at", accessToken)
			return &authclient.User{ID: "user-2"}, nil
		},
	}
	got, err := newVerify(p).Verify(context.Background(), VerifyRequest{Code: "code-2"})
	require.NoError(t, err)
	require.Equal(t, "user-2", got.User.ID)
}

func TestVerify_ReplayedTokenServedFromCache(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(string, string) (*authclient.Session, error) { return okSession(), nil },
	}
	svc := newVerify(p)

	req := VerifyRequest{TokenHash: "one-shot", LinkType: "magiclink"}
	first, err := svc.Verify(context.Background(), req)
	require.NoError(t, err)

	// Second call with the same one-shot token: the provider would answer
	// "already used", but the cached result wins and it is never asked.
	second, err := svc.Verify(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, first.User.ID, second.User.ID)
	require.Equal(t, 1, p.verifyCalls)
}

func TestVerify_ReplayUnderDifferentTypeHitsProvider(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(string, string) (*authclient.Session, error) { return okSession(), nil },
	}
	svc := newVerify(p)

	_, err := svc.Verify(context.Background(), VerifyRequest{TokenHash: "one-shot", LinkType: "magiclink"})
	require.NoError(t, err)

	// Same token, different allowed type: a distinct verification that must
	// reach the provider instead of the cached result.
	_, err = svc.Verify(context.Background(), VerifyRequest{TokenHash: "one-shot", LinkType: "recovery"})
	require.NoError(t, err)
	require.Equal(t, 2, p.verifyCalls)
}

func TestVerify_FailuresNotCached(t *testing.T) {
	p := &fakeProvider{
		verifyFn: func(string, string) (*authclient.Session, error) {
			return nil, &authclient.APIError{Status: http.StatusForbidden, Code: "otp_expired"}
		},
	}
	svc := newVerify(p)

	req := VerifyRequest{TokenHash: "bad", LinkType: "magiclink"}
	_, err := svc.Verify(context.Background(), req)
	require.ErrorIs(t, err, ErrExpired)
	_, err = svc.Verify(context.Background(), req)
	require.ErrorIs(t, err, ErrExpired)
	require.Equal(t, 2, p.verifyCalls)
}

func TestProviderMessage(t *testing.T) {
	err := classifyProviderError(&authclient.APIError{Message: "Email link is invalid or has expired"}, FlowToken)
	require.ErrorIs(t, err, ErrExpired)
	require.Equal(t, "Email link is invalid or has expired", ProviderMessage(err))

	require.Equal(t, "", ProviderMessage(ErrAuthenticationFailed))
}

func TestProviderMessage_TransportErrorCarriesNoMessage(t *testing.T) {
	cause := errors.New(`Post "http://auth.internal:9999/verify": dial tcp: connection refused`)
	err := classifyProviderError(cause, FlowToken)

	require.ErrorIs(t, err, ErrAuthenticationFailed)
	require.Equal(t, "", ProviderMessage(err))
	// the raw error stays available for logs
	require.Contains(t, err.Error(), "connection refused")
}
