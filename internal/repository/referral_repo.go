package repository

import (
	"context"

	"tokenvault/internal/models"

	"gorm.io/gorm"
)

type ReferralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: db}
}

func (r *ReferralRepository) WithTx(tx *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: tx}
}

// CreateLink persists a new referral relationship.
func (r *ReferralRepository) CreateLink(ctx context.Context, link *models.ReferralLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

// GetLink returns the link between referrer and referred, or gorm.ErrRecordNotFound.
func (r *ReferralRepository) GetLink(ctx context.Context, referrerID, referredID string) (*models.ReferralLink, error) {
	var link models.ReferralLink
	err := r.db.WithContext(ctx).
		Where("referrer_id = ? AND referred_id = ?", referrerID, referredID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *ReferralRepository) CreateEarning(ctx context.Context, e *models.ReferralEarning) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ReferralRepository) ListEarningsByReferrer(ctx context.Context, referrerID string, limit, offset int) ([]models.ReferralEarning, error) {
	var list []models.ReferralEarning
	err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *ReferralRepository) CountEarningsByStaking(ctx context.Context, stakingID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.ReferralEarning{}).Where("staking_id = ?", stakingID).Count(&n).Error
	return n, err
}
