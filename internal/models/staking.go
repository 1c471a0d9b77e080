package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Staking is a time-locked token commitment. Created ACTIVE; COMPLETED is set by the
// external maturity job.
type Staking struct {
	ID            string          `gorm:"primaryKey;size:36" json:"id"`
	UserID        string          `gorm:"size:36;not null;index" json:"user_id"`
	AmountStaked  decimal.Decimal `gorm:"type:decimal(24,6);not null" json:"amount_staked"`
	DurationDays  int             `gorm:"not null" json:"duration_days"`
	RewardPercent int64           `gorm:"not null" json:"reward_percent"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null;index" json:"end_date"`
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Staking) TableName() string {
	return "stakings"
}
