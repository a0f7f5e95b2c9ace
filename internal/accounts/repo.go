package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/oaklinebank/oakline-backend/pkg/db/models"
)

// Repository exposes user-account persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an accounts repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email, including soft-deleted rows.
// Callers decide how deleted accounts are surfaced.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves the user holding the given username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RecordFailedLogin increments the failed-login counter atomically and stamps the
// failure time. The increment runs in SQL so concurrent failures never lose updates.
func (r *Repository) RecordFailedLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"failed_login_attempts": gorm.Expr("failed_login_attempts + ?", 1),
			"last_failed_login":     at,
		}).Error
}

// ResetFailedLogins zeroes the failed-login counter after a successful authentication.
func (r *Repository) ResetFailedLogins(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"failed_login_attempts": 0,
			"last_failed_login":     nil,
		}).Error
}

// SetAccountStatus updates the lifecycle status column.
func (r *Repository) SetAccountStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("account_status", status).Error
}

// Activate flips the account to active status and enables the login flag.
func (r *Repository) Activate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"account_status": "active",
			"is_active":      true,
		}).Error
}

// SetOTP stores a fresh one-time passcode and its expiry for the user.
func (r *Repository) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"otp":           code,
			"otp_expiry_at": expiresAt,
		}).Error
}

// ConsumeOTP clears the stored passcode if and only if it matches and has not
// expired. The conditional UPDATE makes consumption single-use even under
// concurrent verification attempts; the boolean reports whether a row matched.
func (r *Repository) ConsumeOTP(ctx context.Context, id uuid.UUID, code string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND otp = ? AND otp <> '' AND otp_expiry_at IS NOT NULL AND otp_expiry_at > ?", id, code, now).
		UpdateColumns(map[string]any{
			"otp":           "",
			"otp_expiry_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ClearOTP drops any outstanding passcode without checking it.
func (r *Repository) ClearOTP(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"otp":           "",
			"otp_expiry_at": nil,
		}).Error
}

// SoftDelete stamps deleted_at and revokes the login flag. Already-deleted rows
// are left untouched; the boolean reports whether the delete applied.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumns(map[string]any{
			"deleted_at": at,
			"is_active":  false,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Restore clears deleted_at on a soft-deleted row. The login flag stays off;
// a restored account re-activates through the normal flow.
func (r *Repository) Restore(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		UpdateColumn("deleted_at", nil)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
