package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's named balances. Balance is the primary token, UnitBalance
// the secondary unit. Neither is allowed to go negative; debits are conditional
// updates in WalletRepository.
type Wallet struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"uniqueIndex;size:36;not null" json:"user_id"`
	Balance     decimal.Decimal `gorm:"type:decimal(24,6);not null;default:0" json:"balance"`
	UnitBalance decimal.Decimal `gorm:"type:decimal(24,6);not null;default:0" json:"unit_balance"`
	Currency    string          `gorm:"size:10;not null;default:'TKN'" json:"currency"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallets"
}
