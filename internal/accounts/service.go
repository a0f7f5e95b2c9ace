package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/db"
	"github.com/oaklinebank/oakline-backend/pkg/db/models"
	pkgerrors "github.com/oaklinebank/oakline-backend/pkg/errors"
	"github.com/oaklinebank/oakline-backend/pkg/logger"
	"github.com/oaklinebank/oakline-backend/pkg/security"
)

// Service handles the account lifecycle: registration, lookup, soft delete
// and restore.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Restore(ctx context.Context, id uuid.UUID) (*UserDTO, error)
}

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// WelcomeMailer dispatches the post-registration welcome message.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, to, fullName, username string) error
}

type accountRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Restore(ctx context.Context, id uuid.UUID) (bool, error)
}

// ServiceParams packages the dependencies for the accounts service.
type ServiceParams struct {
	TxRunner    TxRunner
	RepoFactory func(tx *gorm.DB) accountRepository
	Hasher      *security.Hasher
	Mailer      WelcomeMailer
	Logger      *logger.Logger
	Account     config.AccountConfig
}

type service struct {
	tx      TxRunner
	repoFor func(tx *gorm.DB) accountRepository
	hasher  *security.Hasher
	mailer  WelcomeMailer
	logg    *logger.Logger
	account config.AccountConfig
}

// NewService builds an accounts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "password hasher required")
	}
	repoFor := params.RepoFactory
	if repoFor == nil {
		repoFor = func(tx *gorm.DB) accountRepository { return NewRepository(tx) }
	}
	return &service{
		tx:      params.TxRunner,
		repoFor: repoFor,
		hasher:  params.Hasher,
		mailer:  params.Mailer,
		logg:    params.Logger,
		account: params.Account,
	}, nil
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !req.SecurityQuestion.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid security question")
	}
	if req.Password != req.ConfirmPassword {
		return nil, pkgerrors.New(pkgerrors.CodePasswordMismatch, "password confirmation does not match")
	}

	passwordHash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *UserDTO
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := s.createWithUsername(ctx, repo, CreateUserDTO{
			Email:            email,
			Username:         normalizeUsername(req.Username),
			PasswordHash:     passwordHash,
			FirstName:        strings.TrimSpace(req.FirstName),
			MiddleName:       req.MiddleName,
			LastName:         strings.TrimSpace(req.LastName),
			SecurityQuestion: req.SecurityQuestion,
			SecurityAnswer:   strings.TrimSpace(req.SecurityAnswer),
		})
		if err != nil {
			return err
		}

		created = FromModel(user)
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	s.sendWelcome(ctx, created)
	return created, nil
}

// createWithUsername inserts the user, generating a unique handle when the
// caller did not choose one. Generated handles retry on username collisions; a
// caller-chosen handle fails fast with a conflict.
func (s *service) createWithUsername(ctx context.Context, repo accountRepository, dto CreateUserDTO) (*models.User, error) {
	chosen := dto.Username != nil

	attempts := s.account.UsernameAttempts
	if attempts < 1 || chosen {
		attempts = 1
	}

	for i := 0; i < attempts; i++ {
		if !chosen {
			handle, err := security.GenerateUsername(s.account.SiteName)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate username")
			}
			dto.Username = &handle
		}

		user, err := repo.Create(ctx, dto)
		if err == nil {
			return user, nil
		}

		switch {
		case db.IsUniqueViolation(err, "users_email_key"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		case db.IsUniqueViolation(err, "users_username_key"):
			if chosen {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
			}
			continue
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
	}

	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique username")
}

func (s *service) sendWelcome(ctx context.Context, user *UserDTO) {
	if s.mailer == nil || user == nil {
		return
	}

	username := ""
	if user.Username != nil {
		username = *user.Username
	}

	// Delivery failures never roll back registration.
	if err := s.mailer.SendWelcome(ctx, user.Email, user.FullName, username); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "enqueue welcome email", err)
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	var dto *UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		user, err := s.repoFor(tx).FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load account")
		}
		dto = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)

		deleted, err := repo.SoftDelete(ctx, id, time.Now().UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "soft delete account")
		}
		if !deleted {
			// Either the row does not exist or it was already deleted.
			if _, err := repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "account already deleted")
		}
		return nil
	})
}

func (s *service) Restore(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	var dto *UserDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repoFor(tx)

		restored, err := repo.Restore(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restore account")
		}
		if !restored {
			if _, err := repo.FindByID(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "account is not deleted")
		}

		user, err := repo.FindByID(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload account")
		}
		dto = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dto, nil
}

func normalizeUsername(username *string) *string {
	if username == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*username)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
