package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oaklinebank/oakline-backend/pkg/enums"
	"gorm.io/gorm"
)

// User represents the canonical account identity entity.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"type:text;not null;uniqueIndex:users_email_key"`
	Username     *string   `gorm:"column:username;uniqueIndex:users_username_key"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	FirstName    string    `gorm:"column:first_name;not null"`
	MiddleName   *string   `gorm:"column:middle_name"`
	LastName     string    `gorm:"column:last_name;not null"`

	SecurityQuestion enums.SecurityQuestion `gorm:"column:security_question;not null"`
	SecurityAnswer   string                 `gorm:"column:security_answer;not null"`

	FailedLoginAttempts int        `gorm:"column:failed_login_attempts;not null;default:0"`
	LastFailedLogin     *time.Time `gorm:"column:last_failed_login"`

	OTP         string     `gorm:"column:otp;not null;default:''"`
	OTPExpiryAt *time.Time `gorm:"column:otp_expiry_at"`

	IsActive      bool                `gorm:"column:is_active;not null;default:false"`
	IsSuperuser   bool                `gorm:"column:is_superuser;not null;default:false"`
	AccountStatus enums.AccountStatus `gorm:"column:account_status;not null;default:inactive"`
	Role          enums.Role          `gorm:"column:role;not null;default:customer"`

	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

// BeforeCreate assigns the primary key client-side when the dialect has no
// uuid default (sqlite in tests).
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName derives the display name from the stored name fields on every
// call; it is never persisted. An absent middle name leaves two consecutive
// spaces, matching the rendering downstream consumers already rely on.
func (u *User) FullName() string {
	middle := ""
	if u.MiddleName != nil {
		middle = *u.MiddleName
	}
	return fmt.Sprintf("%s %s %s", u.FirstName, middle, u.LastName)
}

// HasRole reports whether the account carries exactly the candidate role.
func (u *User) HasRole(role enums.Role) bool {
	return u.Role == role
}

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}
