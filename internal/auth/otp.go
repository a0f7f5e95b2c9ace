package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/oaklinebank/oakline-backend/internal/accounts"
	"github.com/oaklinebank/oakline-backend/pkg/db/models"
	"github.com/oaklinebank/oakline-backend/pkg/enums"
	pkgerrors "github.com/oaklinebank/oakline-backend/pkg/errors"
	"github.com/oaklinebank/oakline-backend/pkg/security"
)

// IssueOTP generates a fresh passcode, stores it with its expiry and mails it
// to the account holder. Unknown or deleted addresses return success without
// side effects so the endpoint does not leak which emails exist.
func (s *service) IssueOTP(ctx context.Context, req OTPRequest) error {
	user, err := s.resolveByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil || user.IsDeleted() {
		return nil
	}
	if user.AccountStatus == enums.AccountStatusLocked {
		return pkgerrors.New(pkgerrors.CodeForbidden, accountLockedMessage)
	}

	code, err := security.GenerateOTP(s.otpCfg.Length)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate otp")
	}

	expiresAt := s.now().Add(s.otpCfg.TTL)
	if err := s.users.SetOTP(ctx, user.ID, code, expiresAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store otp")
	}

	if s.mailer != nil {
		if err := s.mailer.SendOTP(ctx, user.Email, user.FullName(), code, expiresAt); err != nil {
			// The stored code stays valid; the holder can request another.
			if s.logg != nil {
				s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "enqueue otp email", err)
			}
		}
	}
	return nil
}

// VerifyOTP redeems a passcode. A successful redemption activates the account
// and clears the stored code in one conditional update.
func (s *service) VerifyOTP(ctx context.Context, req OTPVerifyRequest) (*OTPVerifyResponse, error) {
	user, err := s.resolveByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.IsDeleted() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidPasscodeMessage)
	}

	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidPasscodeMessage)
	}

	consumed, err := s.users.ConsumeOTP(ctx, user.ID, code, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume otp")
	}
	if !consumed {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidPasscodeMessage)
	}

	if user.AccountStatus == enums.AccountStatusInactive || user.AccountStatus == enums.AccountStatusPending {
		if err := s.users.Activate(ctx, user.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate account")
		}
	}

	fresh, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload account")
	}
	return &OTPVerifyResponse{User: accounts.FromModel(fresh)}, nil
}

// resolveByEmail loads a user by normalized email, mapping the not-found case
// to a nil user so each flow picks its own disclosure behavior.
func (s *service) resolveByEmail(ctx context.Context, email string) (*models.User, error) {
	input := strings.ToLower(strings.TrimSpace(email))
	if input == "" {
		return nil, nil
	}
	user, err := s.users.FindByEmail(ctx, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}
	return user, nil
}
