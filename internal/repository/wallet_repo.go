package repository

import (
	"context"
	"errors"
	"time"

	"tokenvault/internal/domain"
	"tokenvault/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrUnknownBalanceField = errors.New("unknown wallet balance field")
)

var balanceColumns = map[string]string{
	domain.BalanceFieldPrimary: "balance",
	domain.BalanceFieldUnit:    "unit_balance",
}

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) GetByUserID(ctx context.Context, userID string) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// GetOrCreate returns the user's wallet, creating an empty one on first use.
// Concurrent first calls for the same user converge on a single row through the
// unique user_id index.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID, currency string) (*models.Wallet, error) {
	w := &models.Wallet{
		UserID:      userID,
		Balance:     decimal.Zero,
		UnitBalance: decimal.Zero,
		Currency:    currency,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(w).Error
	if err != nil {
		return nil, err
	}
	return r.GetByUserID(ctx, userID)
}

// AdjustBalance adds delta to the named balance in a single statement. A negative
// delta only applies when the balance covers it; otherwise ErrInsufficientBalance
// is returned and nothing changes.
func (r *WalletRepository) AdjustBalance(ctx context.Context, userID, field string, delta decimal.Decimal) error {
	col, ok := balanceColumns[field]
	if !ok {
		return ErrUnknownBalanceField
	}
	q := r.db.WithContext(ctx).Model(&models.Wallet{}).Where("user_id = ?", userID)
	if delta.IsNegative() {
		q = q.Where(col+" >= ?", delta.Neg())
	}
	res := q.Updates(map[string]interface{}{
		col:          gorm.Expr(col+" + ?", delta),
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if delta.IsNegative() {
			return ErrInsufficientBalance
		}
		return gorm.ErrRecordNotFound
	}
	return nil
}
