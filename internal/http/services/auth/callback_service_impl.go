package auth

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/talentlink/talentlink/internal/metrics"
	"github.com/talentlink/talentlink/internal/observability/logger"
)

// PostAuthInput is what a post-auth task gets to work with.
type PostAuthInput struct {
	Principal          *Principal
	ReferralURLCode    string
	ReferralCookieCode string
}

// PostAuthTask is one independent best-effort side effect run after a
// successful verification (profile provisioning, identity linking, referral
// attribution). Tasks swallow their own errors; the wrapper in the
// orchestrator additionally guards against panics so one task can never
// stop the rest or the redirect.
type PostAuthTask struct {
	Name string
	Run  func(ctx context.Context, in PostAuthInput)
}

// CallbackDeps contains dependencies for the callback orchestrator.
type CallbackDeps struct {
	Verifier VerifyService
	PostAuth []PostAuthTask
}

type callbackService struct {
	verifier VerifyService
	postAuth []PostAuthTask
}

// NewCallbackService creates the callback orchestrator.
func NewCallbackService(d CallbackDeps) CallbackService {
	return &callbackService{verifier: d.Verifier, postAuth: d.PostAuth}
}

func (s *callbackService) Callback(ctx context.Context, req CallbackRequest) *CallbackResult {
	start := time.Now()
	flow := req.Verify.SelectFlow()
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.callback"),
		logger.Flow(string(flow)),
	)

	principal, err := s.verifier.Verify(ctx, req.Verify)
	if err != nil {
		kind := failureKind(err)
		log.Warn("verification failed",
			logger.String("kind", kind),
			logger.Err(err),
		)
		metrics.CallbackOutcomes.WithLabelValues(string(flow), kind).Inc()
		metrics.CallbackDuration.Observe(float64(time.Since(start).Milliseconds()))
		return &CallbackResult{
			Location: failureLocation(err, req.Popup),
			Outcome:  kind,
		}
	}

	log = log.With(logger.UserID(principal.User.ID))
	ctx = logger.ToContext(ctx, log)

	in := PostAuthInput{
		Principal:          principal,
		ReferralURLCode:    req.ReferralURLCode,
		ReferralCookieCode: req.ReferralCookieCode,
	}
	for _, task := range s.postAuth {
		s.runTask(ctx, task, in)
	}

	location := SanitizeNext(req.Next)
	if req.Popup {
		location = CallbackSuccessPath
	}

	log.Info("callback completed", logger.String("next", location))
	metrics.CallbackOutcomes.WithLabelValues(string(principal.Flow), "success").Inc()
	metrics.CallbackDuration.Observe(float64(time.Since(start).Milliseconds()))
	return &CallbackResult{
		Location:      location,
		Outcome:       "success",
		Authenticated: true,
	}
}

// runTask runs one post-auth task with the uniform guard.
func (s *callbackService) runTask(ctx context.Context, task PostAuthTask, in PostAuthInput) {
	defer func() {
		if r := recover(); r != nil {
			logger.From(ctx).Error("post-auth task panicked",
				logger.String("task", task.Name),
				logger.Any("panic", r),
			)
			metrics.ProvisionFailures.WithLabelValues(task.Name).Inc()
		}
	}()
	task.Run(ctx, in)
}

// failureKind labels a verification error for metrics.
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingParameters):
		return "missing_parameters"
	case errors.Is(err, ErrInvalidLinkType):
		return "invalid_link_type"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrAlreadyUsedOrInvalid):
		return "already_used"
	default:
		return "auth_failed"
	}
}

// failureLocation computes the redirect for a failed verification. Popup
// failures go to the popup success page with an error parameter so the
// opener window can react; everything else goes back to the login page with
// a user-facing message.
func failureLocation(err error, popup bool) string {
	msg := failureMessage(err)
	if popup {
		return CallbackSuccessPath + "?error=" + url.QueryEscape(msg)
	}
	return LoginPath + "?error=" + url.QueryEscape(msg)
}

// failureMessage picks the user-facing message for a verification failure.
// Provider messages are only surfaced for the generic case; they are written
// by the provider to be user-facing. Nothing else ever leaks into the URL.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, ErrMissingParameters):
		return "Missing authentication parameters."
	case errors.Is(err, ErrInvalidLinkType):
		return "This login link is not valid."
	case errors.Is(err, ErrExpired):
		return "Your login link has expired. Please request a new one."
	case errors.Is(err, ErrAlreadyUsedOrInvalid):
		return "This login link has already been used. Please request a new one."
	default:
		if msg := ProviderMessage(err); msg != "" {
			return msg
		}
		return "Authentication failed. Please try again."
	}
}

// StandardPostAuthTasks builds the canonical task list: profile
// provisioning, then referral attribution. The identity linker is appended
// by wiring since it lives in the oauth service package.
func StandardPostAuthTasks(provision ProvisionService, referral ReferralService) []PostAuthTask {
	return []PostAuthTask{
		{
			Name: "profile",
			Run: func(ctx context.Context, in PostAuthInput) {
				provision.EnsureProfile(ctx, in.Principal.User.ID, in.Principal.User.Email)
			},
		},
		{
			Name: "referral",
			Run: func(ctx context.Context, in PostAuthInput) {
				code := ResolveReferralCode(
					in.ReferralURLCode,
					in.ReferralCookieCode,
					in.Principal.User.MetadataString("referral_code"),
				)
				referral.Apply(ctx, in.Principal.User.ID, code)
			},
		},
	}
}
