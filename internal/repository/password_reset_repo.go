package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/judiguard/judi_guard_server/internal/model"
)

type PasswordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) *PasswordResetRepository {
	return &PasswordResetRepository{db: db}
}

func (r *PasswordResetRepository) Create(reset *model.PasswordReset) error {
	return r.db.Create(reset).Error
}

func (r *PasswordResetRepository) GetByToken(token string) (*model.PasswordReset, error) {
	var reset model.PasswordReset
	err := r.db.Where("token = ?", token).First(&reset).Error
	if err != nil {
		return nil, err
	}
	return &reset, nil
}

// MarkUsed burns a token so it cannot reset a password twice.
func (r *PasswordResetRepository) MarkUsed(id int64) error {
	return r.db.Model(&model.PasswordReset{}).Where("id = ?", id).Update("used", true).Error
}

// InvalidateForUser burns every outstanding token of a user. Called when a
// new reset is requested or a password changes.
func (r *PasswordResetRepository) InvalidateForUser(userID int64) error {
	return r.db.Model(&model.PasswordReset{}).
		Where("user_id = ? AND used = ?", userID, false).
		Update("used", true).Error
}

// DeleteByUserID removes every token of a user. Used by account deletion.
func (r *PasswordResetRepository) DeleteByUserID(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.PasswordReset{}).Error
}

// DeleteExpired purges tokens past their expiry. Returns the rows removed.
func (r *PasswordResetRepository) DeleteExpired(before time.Time) (int64, error) {
	res := r.db.Where("expires_at < ?", before).Delete(&model.PasswordReset{})
	return res.RowsAffected, res.Error
}
