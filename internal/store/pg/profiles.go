package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentlink/talentlink/internal/domain/repository"
)

// ProfileRepo implements repository.ProfileRepository.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

var _ repository.ProfileRepository = (*ProfileRepo)(nil)

func (r *ProfileRepo) StudentExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM student_profiles WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	return exists, err
}

func (r *ProfileRepo) CompanyExists(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM company_profiles WHERE user_id = $1)`,
		userID,
	).Scan(&exists)
	return exists, err
}

// InsertStudent relies on ON CONFLICT DO NOTHING so that two callbacks
// racing for the same first login both succeed with a single row.
func (r *ProfileRepo) InsertStudent(ctx context.Context, userID, email string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO student_profiles (user_id, email, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO NOTHING`,
		userID, email,
	)
	if err != nil && isPgCode(err, pgUniqueViolation) {
		// secondary unique index (email) lost a race; profile exists
		return nil
	}
	return err
}
