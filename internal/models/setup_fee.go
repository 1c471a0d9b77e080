package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletSetupFee is the one-off activation fee a wallet owes. Referring an active
// staker can waive it.
type WalletSetupFee struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    string          `gorm:"size:36;not null;uniqueIndex" json:"user_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(24,6);not null" json:"amount"`
	Status    string          `gorm:"size:20;not null;index" json:"status"`
	WaivedAt  *time.Time      `json:"waived_at"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (WalletSetupFee) TableName() string { return "wallet_setup_fees" }
