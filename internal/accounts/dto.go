package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/oaklinebank/oakline-backend/pkg/db/models"
	"github.com/oaklinebank/oakline-backend/pkg/enums"
)

// RegisterRequest contains the payload required to open a new account.
// Shape constraints live in the validate tags; semantic checks (closed enum
// membership, password confirmation) belong to the service.
type RegisterRequest struct {
	FirstName        string                 `json:"first_name" validate:"required,max=30"`
	MiddleName       *string                `json:"middle_name,omitempty" validate:"omitempty,max=30"`
	LastName         string                 `json:"last_name" validate:"required,max=30"`
	Username         *string                `json:"username,omitempty" validate:"omitempty,max=12"`
	Email            string                 `json:"email" validate:"required,email,max=255"`
	SecurityQuestion enums.SecurityQuestion `json:"security_question" validate:"required"`
	SecurityAnswer   string                 `json:"security_answer" validate:"required,max=30"`
	Password         string                 `json:"password" validate:"required,min=8,max=128"`
	ConfirmPassword  string                 `json:"confirm_password" validate:"required,min=8,max=128"`
}

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID               uuid.UUID              `json:"id"`
	Email            string                 `json:"email"`
	Username         *string                `json:"username,omitempty"`
	FirstName        string                 `json:"first_name"`
	MiddleName       *string                `json:"middle_name,omitempty"`
	LastName         string                 `json:"last_name"`
	FullName         string                 `json:"full_name"`
	SecurityQuestion enums.SecurityQuestion `json:"security_question"`
	IsActive         bool                   `json:"is_active"`
	IsSuperuser      bool                   `json:"is_superuser"`
	AccountStatus    enums.AccountStatus    `json:"account_status"`
	Role             enums.Role             `json:"role"`
	CreatedAt        time.Time              `json:"created_at"`
	UpdatedAt        time.Time              `json:"updated_at"`
	DeletedAt        *time.Time             `json:"deleted_at,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email            string
	Username         *string
	PasswordHash     string
	FirstName        string
	MiddleName       *string
	LastName         string
	SecurityQuestion enums.SecurityQuestion
	SecurityAnswer   string
	Role             *enums.Role
	AccountStatus    *enums.AccountStatus
	IsActive         *bool
	IsSuperuser      bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:               u.ID,
		Email:            u.Email,
		Username:         u.Username,
		FirstName:        u.FirstName,
		MiddleName:       u.MiddleName,
		LastName:         u.LastName,
		FullName:         u.FullName(),
		SecurityQuestion: u.SecurityQuestion,
		IsActive:         u.IsActive,
		IsSuperuser:      u.IsSuperuser,
		AccountStatus:    u.AccountStatus,
		Role:             u.Role,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
		DeletedAt:        u.DeletedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	role := enums.RoleCustomer
	if c.Role != nil {
		role = *c.Role
	}
	status := enums.AccountStatusInactive
	if c.AccountStatus != nil {
		status = *c.AccountStatus
	}
	isActive := false
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		Email:            c.Email,
		Username:         c.Username,
		PasswordHash:     c.PasswordHash,
		FirstName:        c.FirstName,
		MiddleName:       c.MiddleName,
		LastName:         c.LastName,
		SecurityQuestion: c.SecurityQuestion,
		SecurityAnswer:   c.SecurityAnswer,
		Role:             role,
		AccountStatus:    status,
		IsActive:         isActive,
		IsSuperuser:      c.IsSuperuser,
	}
}
