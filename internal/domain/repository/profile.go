package repository

import (
	"context"
	"time"
)

// StudentProfile is the talent-side profile row, keyed 1:1 by user id.
type StudentProfile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyProfile is the employer-side profile row, keyed 1:1 by user id.
type CompanyProfile struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	CompanyName *string   `json:"company_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProfileRepository persists role-specific profiles. At most one profile of
// either kind exists per user; inserts are skip-if-exists and a concurrent
// duplicate insert must not surface as an error.
type ProfileRepository interface {
	// StudentExists reports whether a student profile exists for userID.
	StudentExists(ctx context.Context, userID string) (bool, error)

	// CompanyExists reports whether a company profile exists for userID.
	CompanyExists(ctx context.Context, userID string) (bool, error)

	// InsertStudent creates a student profile. No-op if the row already
	// exists.
	InsertStudent(ctx context.Context, userID, email string) error
}
