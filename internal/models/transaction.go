package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an append-only ledger entry describing one monetary event for one user.
type Transaction struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	UserID         string          `gorm:"size:36;not null;index" json:"user_id"`
	Type           string          `gorm:"size:30;not null;index" json:"type"`
	Amount         decimal.Decimal `gorm:"type:decimal(24,6);not null" json:"amount"`
	Currency       string          `gorm:"size:10;not null" json:"currency"`
	Status         string          `gorm:"size:20;not null" json:"status"`
	FeeAmount      decimal.Decimal `gorm:"type:decimal(24,6);not null;default:0" json:"fee_amount"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(24,6);not null;default:0" json:"net_amount"`
	FeeReceiverID  *string         `gorm:"size:36" json:"fee_receiver_id,omitempty"`
	CounterpartyID *string         `gorm:"size:36" json:"counterparty_id,omitempty"`
	Reference      string          `gorm:"size:64;index" json:"reference"` // staking id or transfer id
	Description    string          `gorm:"size:255" json:"description"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}
