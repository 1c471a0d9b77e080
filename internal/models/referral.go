package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralLink records who referred whom. Written at signup; a user can only be
// referred once.
type ReferralLink struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ReferrerID string    `gorm:"size:36;not null;index" json:"referrer_id"`
	ReferredID string    `gorm:"size:36;not null;uniqueIndex" json:"referred_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ReferralLink) TableName() string { return "referral_links" }

// ReferralEarning is the bonus a referrer earned from one stake. The unique
// staking_id keeps it to at most one per stake.
type ReferralEarning struct {
	ID             string          `gorm:"primaryKey;size:36" json:"id"`
	ReferralLinkID uint            `gorm:"not null;index" json:"referral_link_id"`
	StakingID      string          `gorm:"size:36;not null;uniqueIndex" json:"staking_id"`
	ReferrerID     string          `gorm:"size:36;not null;index" json:"referrer_id"`
	Amount         decimal.Decimal `gorm:"type:decimal(24,6);not null" json:"amount"`
	Percentage     int64           `gorm:"not null" json:"percentage"`
	CreatedAt      time.Time       `json:"created_at"`
}

func (ReferralEarning) TableName() string { return "referral_earnings" }
