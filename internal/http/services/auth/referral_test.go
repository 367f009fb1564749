package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talentlink/talentlink/internal/domain/repository"
)

func TestResolveReferralCode_Priority(t *testing.T) {
	require.Equal(t, "abcd1234", ResolveReferralCode("abcd1234", "eeee1234", "ffff1234"))
	require.Equal(t, "eeee1234", ResolveReferralCode("", "eeee1234", "ffff1234"))
	require.Equal(t, "ffff1234", ResolveReferralCode("", "", "ffff1234"))
	require.Equal(t, "", ResolveReferralCode("", "", ""))
}

func TestResolveReferralCode_InvalidFallsThrough(t *testing.T) {
	// URL code is malformed, so the cookie code wins
	require.Equal(t, "eeee1234", ResolveReferralCode("ABCD1234", "eeee1234", ""))
	require.Equal(t, "eeee1234", ResolveReferralCode("short", "eeee1234", ""))
	require.Equal(t, "eeee1234", ResolveReferralCode("toolongcode1", "eeee1234", ""))
	require.Equal(t, "eeee1234", ResolveReferralCode("abcd-123", "eeee1234", ""))
	require.Equal(t, "", ResolveReferralCode("ABCD1234", "abc", "x"))
}

type fakeReferrals struct {
	status repository.ReferralStatus
	err    error
	calls  []string
}

func (f *fakeReferrals) Apply(_ context.Context, userID, code string) (repository.ReferralStatus, error) {
	f.calls = append(f.calls, userID+"|"+code)
	return f.status, f.err
}

func TestReferralApply_SubmitsCode(t *testing.T) {
	repo := &fakeReferrals{status: repository.ReferralApplied}
	svc := NewReferralService(ReferralDeps{Referrals: repo})

	svc.Apply(context.Background(), "user-1", "abcd1234")
	require.Equal(t, []string{"user-1|abcd1234"}, repo.calls)
}

func TestReferralApply_EmptyCodeSkipsRPC(t *testing.T) {
	repo := &fakeReferrals{}
	svc := NewReferralService(ReferralDeps{Referrals: repo})

	svc.Apply(context.Background(), "user-1", "")
	require.Empty(t, repo.calls)
}

func TestReferralApply_DeclinedAndErrorsSwallowed(t *testing.T) {
	for _, status := range []repository.ReferralStatus{
		repository.ReferralAlreadyReferred,
		repository.ReferralSelfReferral,
		repository.ReferralCodeNotFound,
	} {
		repo := &fakeReferrals{status: status}
		NewReferralService(ReferralDeps{Referrals: repo}).Apply(context.Background(), "user-1", "abcd1234")
		require.Len(t, repo.calls, 1)
	}

	repo := &fakeReferrals{err: errors.New("db down")}
	NewReferralService(ReferralDeps{Referrals: repo}).Apply(context.Background(), "user-1", "abcd1234")
}
