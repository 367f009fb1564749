package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentlink/talentlink/internal/domain/repository"
)

// ReferralRepo implements repository.ReferralRepository over the
// apply_referral function, which credits both parties atomically and
// returns a status string instead of raising for expected declines.
type ReferralRepo struct {
	pool *pgxpool.Pool
}

var _ repository.ReferralRepository = (*ReferralRepo)(nil)

func (r *ReferralRepo) Apply(ctx context.Context, userID, code string) (repository.ReferralStatus, error) {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT apply_referral($1, $2)`, userID, code).Scan(&status)
	if err != nil {
		if isPgCode(err, pgUndefinedFunction) {
			return "", repository.ErrRPCUnavailable
		}
		return "", fmt.Errorf("pg: apply_referral: %w", err)
	}

	switch s := repository.ReferralStatus(status); s {
	case repository.ReferralApplied,
		repository.ReferralAlreadyReferred,
		repository.ReferralSelfReferral,
		repository.ReferralCodeNotFound:
		return s, nil
	default:
		return "", fmt.Errorf("pg: apply_referral: unexpected status %q", status)
	}
}
