package repository

import (
	"context"
	"time"

	"tokenvault/internal/domain"
	"tokenvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SetupFeeRepository struct {
	db *gorm.DB
}

func NewSetupFeeRepository(db *gorm.DB) *SetupFeeRepository {
	return &SetupFeeRepository{db: db}
}

// Create records a pending setup fee. An existing fee for the user is left as is.
func (r *SetupFeeRepository) Create(ctx context.Context, f *models.WalletSetupFee) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(f).Error
}

func (r *SetupFeeRepository) GetByUserID(ctx context.Context, userID string) (*models.WalletSetupFee, error) {
	var f models.WalletSetupFee
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// WaivePending flips a PENDING fee to WAIVED and reports whether a row changed.
func (r *SetupFeeRepository) WaivePending(ctx context.Context, userID string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.WalletSetupFee{}).
		Where("user_id = ? AND status = ?", userID, domain.SetupFeeStatusPending).
		Updates(map[string]interface{}{
			"status":     domain.SetupFeeStatusWaived,
			"waived_at":  at,
			"updated_at": at,
		})
	return res.RowsAffected > 0, res.Error
}
