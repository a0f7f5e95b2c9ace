package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/db/models"
	"github.com/oaklinebank/oakline-backend/pkg/enums"
	pkgerrors "github.com/oaklinebank/oakline-backend/pkg/errors"
	"github.com/oaklinebank/oakline-backend/pkg/security"
)

type stubUserRepository struct {
	byEmail map[string]*models.User
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{byEmail: map[string]*models.User{}}
}

func (s *stubUserRepository) add(user *models.User) {
	s.byEmail[user.Email] = user
}

func (s *stubUserRepository) find(id uuid.UUID) *models.User {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user
		}
	}
	return nil
}

func (s *stubUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user := s.find(id); user != nil {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepository) RecordFailedLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	user := s.find(id)
	user.FailedLoginAttempts++
	user.LastFailedLogin = &at
	return nil
}

func (s *stubUserRepository) ResetFailedLogins(ctx context.Context, id uuid.UUID) error {
	user := s.find(id)
	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	return nil
}

func (s *stubUserRepository) SetAccountStatus(ctx context.Context, id uuid.UUID, status string) error {
	s.find(id).AccountStatus = enums.AccountStatus(status)
	return nil
}

func (s *stubUserRepository) Activate(ctx context.Context, id uuid.UUID) error {
	user := s.find(id)
	user.AccountStatus = enums.AccountStatusActive
	user.IsActive = true
	return nil
}

func (s *stubUserRepository) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	user := s.find(id)
	user.OTP = code
	user.OTPExpiryAt = &expiresAt
	return nil
}

func (s *stubUserRepository) ConsumeOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) (bool, error) {
	user := s.find(id)
	if user.OTP == "" || user.OTP != code {
		return false, nil
	}
	if user.OTPExpiryAt == nil || !user.OTPExpiryAt.After(now) {
		return false, nil
	}
	user.OTP = ""
	user.OTPExpiryAt = nil
	return true, nil
}

type stubOTPMailer struct {
	codes []string
	err   error
}

func (s *stubOTPMailer) SendOTP(ctx context.Context, to, fullName, code string, expiresAt time.Time) error {
	if s.err != nil {
		return s.err
	}
	s.codes = append(s.codes, code)
	return nil
}

type authTestSetup struct {
	service Service
	repo    *stubUserRepository
	mailer  *stubOTPMailer
	hasher  *security.Hasher
}

func newAuthTestSetup(t *testing.T) *authTestSetup {
	t.Helper()

	repo := newStubUserRepository()
	mailer := &stubOTPMailer{}
	hasher := security.NewHasher(config.PasswordConfig{})
	svc, err := NewService(ServiceParams{
		UserRepo: repo,
		Hasher:   hasher,
		Mailer:   mailer,
		OTP:      config.OTPConfig{Length: 6, TTL: 5 * time.Minute},
		Account:  config.AccountConfig{SiteName: "Oakline Bank", MaxFailedLogins: 3},
	})
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return &authTestSetup{service: svc, repo: repo, mailer: mailer, hasher: hasher}
}

func (s *authTestSetup) seedUser(t *testing.T, email, password string) *models.User {
	t.Helper()

	hash, err := s.hasher.Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:               uuid.New(),
		Email:            email,
		PasswordHash:     hash,
		FirstName:        "Morgan",
		LastName:         "Hale",
		SecurityQuestion: enums.SecurityQuestionFavoriteBook,
		SecurityAnswer:   "dune",
		IsActive:         true,
		AccountStatus:    enums.AccountStatusActive,
		Role:             enums.RoleCustomer,
	}
	s.repo.add(user)
	return user
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestLoginSuccessResetsFailureCounter(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")
	user.FailedLoginAttempts = 2

	resp, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "  Morgan@Example.com ",
		Password: "Secret123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatal("expected the authenticated user in the response")
	}
	if user.FailedLoginAttempts != 0 {
		t.Fatalf("expected counter reset, got %d", user.FailedLoginAttempts)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	setup := newAuthTestSetup(t)

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginWrongPasswordCountsFailure(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "morgan@example.com",
		Password: "wrong",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	if user.FailedLoginAttempts != 1 {
		t.Fatalf("expected 1 failed attempt, got %d", user.FailedLoginAttempts)
	}
	if user.LastFailedLogin == nil {
		t.Fatal("expected last failed login to be stamped")
	}
	if user.AccountStatus != enums.AccountStatusActive {
		t.Fatalf("one failure must not lock, got %s", user.AccountStatus)
	}
}

func TestLoginLocksAtThreshold(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")

	for i := 0; i < 3; i++ {
		_, err := setup.service.Login(context.Background(), LoginRequest{
			Email:    "morgan@example.com",
			Password: "wrong",
		})
		assertCode(t, err, pkgerrors.CodeUnauthorized)
	}

	if user.AccountStatus != enums.AccountStatusLocked {
		t.Fatalf("expected locked after 3 failures, got %s", user.AccountStatus)
	}

	// Even the correct password is refused once locked.
	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "morgan@example.com",
		Password: "Secret123!",
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestLoginInactiveAccount(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")
	user.IsActive = false
	user.AccountStatus = enums.AccountStatusInactive

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "morgan@example.com",
		Password: "Secret123!",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	if user.FailedLoginAttempts != 0 {
		t.Fatal("a correct password against an inactive account is not a credential failure")
	}
}

func TestLoginSoftDeletedAccount(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")
	deletedAt := time.Now().UTC()
	user.DeletedAt = &deletedAt

	_, err := setup.service.Login(context.Background(), LoginRequest{
		Email:    "morgan@example.com",
		Password: "Secret123!",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestIssueOTPStoresAndMails(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")

	if err := setup.service.IssueOTP(context.Background(), OTPRequest{Email: "Morgan@example.com"}); err != nil {
		t.Fatalf("issue otp failed: %v", err)
	}

	if len(user.OTP) != 6 {
		t.Fatalf("expected 6-digit code, got %q", user.OTP)
	}
	if user.OTPExpiryAt == nil || !user.OTPExpiryAt.After(time.Now()) {
		t.Fatal("expected a future expiry")
	}
	if len(setup.mailer.codes) != 1 || setup.mailer.codes[0] != user.OTP {
		t.Fatalf("expected the stored code to be mailed, got %v", setup.mailer.codes)
	}
}

func TestIssueOTPUnknownEmailIsSilent(t *testing.T) {
	setup := newAuthTestSetup(t)

	if err := setup.service.IssueOTP(context.Background(), OTPRequest{Email: "ghost@example.com"}); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(setup.mailer.codes) != 0 {
		t.Fatal("expected no mail for unknown email")
	}
}

func TestIssueOTPLockedAccount(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")
	user.AccountStatus = enums.AccountStatusLocked

	err := setup.service.IssueOTP(context.Background(), OTPRequest{Email: "morgan@example.com"})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestVerifyOTPActivatesAccount(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")
	user.IsActive = false
	user.AccountStatus = enums.AccountStatusInactive

	ctx := context.Background()
	if err := setup.service.IssueOTP(ctx, OTPRequest{Email: "morgan@example.com"}); err != nil {
		t.Fatalf("issue otp failed: %v", err)
	}
	code := user.OTP

	resp, err := setup.service.VerifyOTP(ctx, OTPVerifyRequest{Email: "morgan@example.com", Code: code})
	if err != nil {
		t.Fatalf("verify otp failed: %v", err)
	}
	if resp.User.AccountStatus != enums.AccountStatusActive || !resp.User.IsActive {
		t.Fatalf("expected activated account, got %s", resp.User.AccountStatus)
	}
	if user.OTP != "" {
		t.Fatal("expected the code to be consumed")
	}

	// Redeeming the same code again must fail.
	_, err = setup.service.VerifyOTP(ctx, OTPVerifyRequest{Email: "morgan@example.com", Code: code})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestVerifyOTPWrongCodeLeavesStored(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")

	ctx := context.Background()
	if err := setup.service.IssueOTP(ctx, OTPRequest{Email: "morgan@example.com"}); err != nil {
		t.Fatalf("issue otp failed: %v", err)
	}
	stored := user.OTP

	_, err := setup.service.VerifyOTP(ctx, OTPVerifyRequest{Email: "morgan@example.com", Code: "000000x"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	if user.OTP != stored {
		t.Fatal("a failed attempt must leave the stored code in place")
	}
}

func TestVerifyOTPExpiredCode(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")

	expired := time.Now().UTC().Add(-time.Minute)
	user.OTP = "123456"
	user.OTPExpiryAt = &expired

	_, err := setup.service.VerifyOTP(context.Background(), OTPVerifyRequest{
		Email: "morgan@example.com",
		Code:  "123456",
	})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestIssueOTPSurvivesMailerFailure(t *testing.T) {
	setup := newAuthTestSetup(t)
	user := setup.seedUser(t, "morgan@example.com", "Secret123!")
	setup.mailer.err = context.DeadlineExceeded

	if err := setup.service.IssueOTP(context.Background(), OTPRequest{Email: "morgan@example.com"}); err != nil {
		t.Fatalf("mailer failure must not surface: %v", err)
	}
	if user.OTP == "" {
		t.Fatal("expected the code to be stored regardless of delivery")
	}
}
