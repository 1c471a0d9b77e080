package repository

import (
	"context"

	"tokenvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TransactionRepository is the append-only ledger store.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Append inserts t. Re-appending an id that already exists is a no-op, so redelivered
// outbox messages never duplicate ledger rows.
func (r *TransactionRepository) Append(ctx context.Context, t *models.Transaction) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(t).Error
}

func (r *TransactionRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *TransactionRepository) ListByReference(ctx context.Context, reference string) ([]models.Transaction, error) {
	var list []models.Transaction
	err := r.db.WithContext(ctx).Where("reference = ?", reference).Order("created_at ASC").Find(&list).Error
	return list, err
}
