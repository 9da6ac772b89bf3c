// Package registration runs a submitted form through every check in a fixed
// order and creates the account when all of them pass.
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/realmgate/internal/dependencies/clock"
	"github.com/mcoot/realmgate/internal/metrics"
	"github.com/mcoot/realmgate/internal/model"
	"github.com/mcoot/realmgate/internal/services/audit"
	"github.com/mcoot/realmgate/internal/services/botcheck"
	"github.com/mcoot/realmgate/internal/services/credential"
	"github.com/mcoot/realmgate/internal/services/csrf"
	"github.com/mcoot/realmgate/internal/services/ratelimit"
	"github.com/mcoot/realmgate/internal/services/validation"
	"github.com/mcoot/realmgate/internal/storage"
)

// Config holds the values attached to every created account and success page
type Config struct {
	Expansion         model.Expansion
	Realmlist         string
	SuccessMessage    string
	DisposableDomains []string
}

// DefaultConfig returns a Wrath of the Lich King realm with the built-in denylist
func DefaultConfig() Config {
	return Config{
		Expansion:         2,
		Realmlist:         "set realmlist 127.0.0.1",
		SuccessMessage:    "Account created successfully",
		DisposableDomains: validation.DefaultDisposableDomains,
	}
}

// Service orchestrates a registration attempt
type Service struct {
	limiter  *ratelimit.Limiter
	guard    *csrf.Guard
	captcha  botcheck.CaptchaVerifier
	accounts storage.AccountStore
	recorder audit.Recorder
	metrics  *metrics.Metrics
	clock    clock.Clock
	cfg      Config
	logger   *slog.Logger
}

// New creates a new registration Service. metrics may be nil.
func New(
	limiter *ratelimit.Limiter,
	guard *csrf.Guard,
	captcha botcheck.CaptchaVerifier,
	accounts storage.AccountStore,
	recorder audit.Recorder,
	metrics *metrics.Metrics,
	clock clock.Clock,
	cfg Config,
	logger *slog.Logger,
) *Service {
	return &Service{
		limiter:  limiter,
		guard:    guard,
		captcha:  captcha,
		accounts: accounts,
		recorder: recorder,
		metrics:  metrics,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register runs req through each check and inserts the account if all pass.
// Order: rate limit, CSRF token, honeypot, required fields, username, email,
// password strength, confirmation, CAPTCHA, uniqueness, insert.
// The first failing step decides the outcome; later steps are not run.
// Session changes (rate counter, expired token) are made on sess and must be
// saved by the caller.
func (s *Service) Register(ctx context.Context, sess *model.Session, req model.RegistrationRequest) Outcome {
	out := s.register(ctx, sess, req)

	s.logger.Info("registration attempt finished",
		"client_ip", req.ClientIP,
		"stage", out.Stage,
		"reached", out.Reached,
		"kind", out.Kind,
		"code", out.Code)
	if s.metrics != nil {
		s.metrics.ObserveRegistration(out.Code, out.Kind)
	}
	return out
}

func (s *Service) register(ctx context.Context, sess *model.Session, req model.RegistrationRequest) Outcome {
	reached := model.StageReceived

	if !s.limiter.Allow(sess, req.ClientIP) {
		return s.reject(ctx, req, reached, model.KindSecurity, model.MsgTooManyAttempts,
			model.EventRateLimitExceeded, "Registration attempt blocked")
	}
	reached = model.StageRateChecked

	if !s.guard.Validate(sess, req.CSRFToken) {
		return s.reject(ctx, req, reached, model.KindSecurity, model.MsgSecurityFailed,
			model.EventCSRFFailed, "Invalid or missing CSRF token")
	}
	reached = model.StageCSRFChecked

	if !botcheck.HoneypotAccepts(req.Honeypot) {
		return s.reject(ctx, req, reached, model.KindSecurity, model.MsgRegisterFailed,
			model.EventHoneypotTriggered, "Bot detected via honeypot field")
	}
	reached = model.StageBotChecked

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if verr := s.validate(req, username, email); verr != nil {
		return s.rejectInvalid(ctx, req, reached, verr)
	}

	if !s.captcha.Verify(ctx, req.CaptchaResponse, req.ClientIP) {
		return s.reject(ctx, req, reached, model.KindSecurity, model.MsgCaptchaFailed,
			model.EventCaptchaFailed, "User: "+username)
	}
	reached = model.StageValidated

	exists, err := s.accounts.AccountExists(ctx, username, email)
	if err != nil {
		return s.persistenceFailure(ctx, req, reached, username, err)
	}
	if exists {
		return s.reject(ctx, req, reached, model.KindConflict, model.MsgAccountInUse,
			model.EventAccountConflict, "User: "+username)
	}
	reached = model.StageUniquenessChecked

	account := &model.Account{
		Username:       username,
		CredentialHash: credential.Encode(username, req.Password),
		Email:          email,
		RegistrationIP: req.ClientIP,
		Expansion:      s.cfg.Expansion,
	}
	if err := s.accounts.InsertAccount(ctx, account); err != nil {
		if errors.Is(err, model.ErrAccountExists) {
			return s.reject(ctx, req, reached, model.KindConflict, model.MsgAccountInUse,
				model.EventAccountConflict, "User: "+username+" (insert)")
		}
		return s.persistenceFailure(ctx, req, reached, username, err)
	}

	s.record(ctx, req, model.EventRegistered, "User: "+username)
	return Outcome{
		Stage:          model.StageInserted,
		Reached:        model.StageInserted,
		Kind:           model.KindNone,
		Code:           model.MsgRegistered,
		Message:        DefaultMessage(model.MsgRegistered),
		Account:        account,
		SuccessMessage: s.cfg.SuccessMessage,
		Realmlist:      s.cfg.Realmlist,
	}
}

// validate applies the field rules in form order and stops at the first failure
func (s *Service) validate(req model.RegistrationRequest, username, email string) *validation.Error {
	if verr := validation.Required(req.Username, req.Email, req.Password, req.Confirmation); verr != nil {
		return verr
	}
	if verr := validation.Username(username); verr != nil {
		return verr
	}
	if verr := validation.Email(email, s.cfg.DisposableDomains); verr != nil {
		return verr
	}
	if verr := validation.Password(req.Password); verr != nil {
		return verr
	}
	return validation.Confirmation(req.Password, req.Confirmation)
}

func (s *Service) rejectInvalid(ctx context.Context, req model.RegistrationRequest, reached model.Stage, verr *validation.Error) Outcome {
	out := s.reject(ctx, req, reached, model.KindUserInput, verr.Code,
		model.EventValidationFailed, fmt.Sprintf("%s: %s", verr.Field, verr.Code))
	if msg := DefaultMessage(verr.Code); msg == "" {
		out.Message = verr.Message
	}
	return out
}

func (s *Service) persistenceFailure(ctx context.Context, req model.RegistrationRequest, reached model.Stage, username string, err error) Outcome {
	s.logger.Error("account store failure",
		"error", err,
		"client_ip", req.ClientIP,
		"username", username)
	return s.reject(ctx, req, reached, model.KindPersistence, model.MsgTryAgainLater,
		model.EventDatabaseError, "Registration failed for user: "+username)
}

func (s *Service) reject(
	ctx context.Context,
	req model.RegistrationRequest,
	reached model.Stage,
	kind model.ErrorKind,
	code model.MessageCode,
	event model.SecurityEventType,
	detail string,
) Outcome {
	s.record(ctx, req, event, detail)
	return Outcome{
		Stage:   model.StageRejected,
		Reached: reached,
		Kind:    kind,
		Code:    code,
		Message: DefaultMessage(code),
		Detail:  detail,
	}
}

func (s *Service) record(ctx context.Context, req model.RegistrationRequest, event model.SecurityEventType, detail string) {
	s.recorder.Record(ctx, model.SecurityEvent{
		Time:     s.clock.Now(),
		ClientIP: req.ClientIP,
		Type:     event,
		Detail:   detail,
	})
	if s.metrics != nil {
		s.metrics.ObserveSecurityEvent(event)
	}
}
