package repository

import (
	"context"

	"tokenvault/internal/models"

	"gorm.io/gorm"
)

type StakingRepository struct {
	db *gorm.DB
}

func NewStakingRepository(db *gorm.DB) *StakingRepository {
	return &StakingRepository{db: db}
}

func (r *StakingRepository) WithTx(tx *gorm.DB) *StakingRepository {
	return &StakingRepository{db: tx}
}

func (r *StakingRepository) Create(ctx context.Context, s *models.Staking) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *StakingRepository) GetByID(ctx context.Context, id string) (*models.Staking, error) {
	var s models.Staking
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StakingRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Staking, error) {
	var list []models.Staking
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}
