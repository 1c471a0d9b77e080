package repository

import (
	"context"
	"time"

	"tokenvault/internal/models"

	"gorm.io/gorm"
)

type LockRepository struct {
	db *gorm.DB
}

func NewLockRepository(db *gorm.DB) *LockRepository {
	return &LockRepository{db: db}
}

func (r *LockRepository) Create(ctx context.Context, l *models.WalletLock) error {
	return r.db.WithContext(ctx).Create(l).Error
}

// HasActiveLock reports whether userID has a lock that is open-ended or not yet expired.
func (r *LockRepository) HasActiveLock(ctx context.Context, userID string, now time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.WalletLock{}).
		Where("user_id = ? AND (locked_until IS NULL OR locked_until > ?)", userID, now).
		Count(&n).Error
	return n > 0, err
}

func (r *LockRepository) DeleteByUserID(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.WalletLock{}).Error
}
