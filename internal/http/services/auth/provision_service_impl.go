package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/talentlink/talentlink/internal/domain/repository"
	"github.com/talentlink/talentlink/internal/metrics"
	"github.com/talentlink/talentlink/internal/observability/logger"
	"github.com/talentlink/talentlink/internal/security/apikey"
)

// ProvisionDeps contains dependencies for the provision service.
type ProvisionDeps struct {
	Profiles    repository.ProfileRepository
	Credentials repository.CredentialRepository
}

type provisionService struct {
	profiles    repository.ProfileRepository
	credentials repository.CredentialRepository
}

// NewProvisionService creates a ProvisionService.
func NewProvisionService(d ProvisionDeps) ProvisionService {
	return &provisionService{profiles: d.Profiles, credentials: d.Credentials}
}

// EnsureProfile makes sure userID has exactly one role-specific profile and
// an API credential. New identities default to the student role; OAuth
// carries no role selection. A profile missed here is repaired on the next
// login since the check runs every time.
func (s *provisionService) EnsureProfile(ctx context.Context, userID, email string) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.provision"),
		logger.UserID(userID),
	)

	if exists, err := s.profiles.StudentExists(ctx, userID); err != nil {
		log.Warn("student profile lookup failed", logger.Err(err))
		metrics.ProvisionFailures.WithLabelValues("profile").Inc()
		return
	} else if exists {
		s.ensureCredential(ctx, log, userID)
		return
	}

	if exists, err := s.profiles.CompanyExists(ctx, userID); err != nil {
		log.Warn("company profile lookup failed", logger.Err(err))
		metrics.ProvisionFailures.WithLabelValues("profile").Inc()
		return
	} else if exists {
		s.ensureCredential(ctx, log, userID)
		return
	}

	if err := s.profiles.InsertStudent(ctx, userID, email); err != nil {
		log.Warn("student profile insert failed", logger.Err(err))
		metrics.ProvisionFailures.WithLabelValues("profile").Inc()
		return
	}
	log.Info("student profile created", logger.Email(email))

	s.ensureCredential(ctx, log, userID)
}

// ensureCredential tries the server-side create-if-missing operation first
// and falls back to a direct insert with a freshly generated key when the
// function is not deployed. Credential failures never fail provisioning.
func (s *provisionService) ensureCredential(ctx context.Context, log *zap.Logger, userID string) {
	err := s.credentials.Ensure(ctx, userID)
	if err == nil {
		return
	}
	if !errors.Is(err, repository.ErrRPCUnavailable) {
		log.Warn("credential ensure failed", logger.Err(err))
		metrics.ProvisionFailures.WithLabelValues("credential").Inc()
		return
	}

	exists, err := s.credentials.Exists(ctx, userID)
	if err != nil {
		log.Warn("credential lookup failed", logger.Err(err))
		metrics.ProvisionFailures.WithLabelValues("credential").Inc()
		return
	}
	if exists {
		return
	}

	cred, err := apikey.New()
	if err != nil {
		log.Warn("credential generation failed", logger.Err(err))
		metrics.ProvisionFailures.WithLabelValues("credential").Inc()
		return
	}
	if err := s.credentials.Insert(ctx, repository.APICredential{
		UserID:     userID,
		KeyID:      cred.KeyID,
		SecretHash: cred.SecretHash,
	}); err != nil {
		log.Warn("credential insert failed", logger.Err(err))
		metrics.ProvisionFailures.WithLabelValues("credential").Inc()
		return
	}
	log.Info("api credential created", logger.String("key_id", cred.KeyID))
}
