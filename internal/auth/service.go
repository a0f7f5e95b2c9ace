package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oaklinebank/oakline-backend/internal/accounts"
	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/db/models"
	"github.com/oaklinebank/oakline-backend/pkg/enums"
	pkgerrors "github.com/oaklinebank/oakline-backend/pkg/errors"
	"github.com/oaklinebank/oakline-backend/pkg/logger"
	"github.com/oaklinebank/oakline-backend/pkg/metrics"
	"github.com/oaklinebank/oakline-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	accountLockedMessage      = "account is locked"
	invalidPasscodeMessage    = "invalid or expired passcode"
)

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	IssueOTP(ctx context.Context, req OTPRequest) error
	VerifyOTP(ctx context.Context, req OTPVerifyRequest) (*OTPVerifyResponse, error)
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RecordFailedLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	ResetFailedLogins(ctx context.Context, id uuid.UUID) error
	SetAccountStatus(ctx context.Context, id uuid.UUID, status string) error
	Activate(ctx context.Context, id uuid.UUID) error
	SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	ConsumeOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) (bool, error)
}

// OTPMailer dispatches passcode delivery.
type OTPMailer interface {
	SendOTP(ctx context.Context, to, fullName, code string, expiresAt time.Time) error
}

type service struct {
	users   userRepository
	hasher  *security.Hasher
	mailer  OTPMailer
	metrics *metrics.AuthMetrics
	logg    *logger.Logger
	otpCfg  config.OTPConfig
	account config.AccountConfig
	now     func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo    userRepository
	Hasher      *security.Hasher
	Mailer      OTPMailer
	AuthMetrics *metrics.AuthMetrics
	Logger      *logger.Logger
	OTP         config.OTPConfig
	Account     config.AccountConfig
	Now         func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		users:   params.UserRepo,
		hasher:  params.Hasher,
		mailer:  params.Mailer,
		metrics: params.AuthMetrics,
		logg:    params.Logger,
		otpCfg:  params.OTP,
		account: params.Account,
		now:     now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if err := s.users.ResetFailedLogins(ctx, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset failed logins")
	}
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil

	s.metrics.IncLogin("success")
	return &LoginResponse{User: accounts.FromModel(user)}, nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		s.metrics.IncLogin("failure")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncLogin("failure")
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	// Soft-deleted rows stay resolvable by email but never authenticate.
	if user.IsDeleted() {
		s.metrics.IncLogin("failure")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	if user.AccountStatus == enums.AccountStatusLocked {
		s.metrics.IncLogin("locked")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, accountLockedMessage)
	}

	start := s.now()
	valid := s.hasher.Verify(password, user.PasswordHash)
	s.metrics.ObserveHashDuration("verify", time.Since(start))

	if !valid {
		if err := s.recordFailure(ctx, user); err != nil {
			return nil, err
		}
		s.metrics.IncLogin("failure")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	if !user.IsActive {
		s.metrics.IncLogin("failure")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	return user, nil
}

// recordFailure bumps the counter and locks the account once the configured
// threshold is reached.
func (s *service) recordFailure(ctx context.Context, user *models.User) error {
	at := s.now()
	if err := s.users.RecordFailedLogin(ctx, user.ID, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record failed login")
	}
	user.FailedLoginAttempts++
	user.LastFailedLogin = &at

	threshold := s.account.MaxFailedLogins
	if threshold <= 0 {
		return nil
	}
	if user.FailedLoginAttempts < threshold {
		return nil
	}

	if err := s.users.SetAccountStatus(ctx, user.ID, enums.AccountStatusLocked.String()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock account")
	}
	user.AccountStatus = enums.AccountStatusLocked
	s.metrics.IncLockout()

	if s.logg != nil {
		s.logg.Warn(s.logg.WithUserID(ctx, user.ID.String()), "account locked after repeated failed logins")
	}
	return nil
}
