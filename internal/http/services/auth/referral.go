package auth

import (
	"context"

	"github.com/talentlink/talentlink/internal/domain/repository"
	"github.com/talentlink/talentlink/internal/metrics"
	"github.com/talentlink/talentlink/internal/observability/logger"
)

const referralCodeLen = 8

// ReferralParams are the query parameter names a referral code may arrive
// under, checked in order.
var ReferralParams = []string{"ref", "referral", "referral_code"}

// ResolveReferralCode picks the pending referral code from its three
// possible sources, URL parameter first, then cookie, then the code stored
// in the user's metadata at signup time (covers confirming on a different
// device). A code that fails the format check is treated as absent.
func ResolveReferralCode(urlCode, cookieCode, metadataCode string) string {
	for _, c := range []string{urlCode, cookieCode, metadataCode} {
		if validReferralCode(c) {
			return c
		}
	}
	return ""
}

// validReferralCode enforces the fixed format: exactly 8 lowercase
// alphanumeric characters.
func validReferralCode(code string) bool {
	if len(code) != referralCodeLen {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// ReferralService applies a pending referral code to a user.
type ReferralService interface {
	// Apply submits the code through the atomic server-side operation.
	// Declined outcomes (already referred, self referral, unknown code)
	// and store failures are logged and swallowed; referral attribution
	// never blocks login.
	Apply(ctx context.Context, userID, code string)
}

// ReferralDeps contains dependencies for the referral service.
type ReferralDeps struct {
	Referrals repository.ReferralRepository
}

type referralService struct {
	referrals repository.ReferralRepository
}

// NewReferralService creates a ReferralService.
func NewReferralService(d ReferralDeps) ReferralService {
	return &referralService{referrals: d.Referrals}
}

func (s *referralService) Apply(ctx context.Context, userID, code string) {
	if code == "" {
		return
	}
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.referral"),
		logger.UserID(userID),
		logger.ReferralCode(code),
	)

	status, err := s.referrals.Apply(ctx, userID, code)
	if err != nil {
		log.Warn("referral application failed", logger.Err(err))
		metrics.ReferralApplications.WithLabelValues("error").Inc()
		return
	}

	metrics.ReferralApplications.WithLabelValues(string(status)).Inc()
	if status == repository.ReferralApplied {
		log.Info("referral applied")
		return
	}
	log.Info("referral declined", logger.String("status", string(status)))
}
