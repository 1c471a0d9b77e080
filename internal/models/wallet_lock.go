package models

import (
	"time"
)

// WalletLock blocks staking for a user until LockedUntil (nil means indefinitely).
type WalletLock struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      string     `gorm:"size:36;not null;index" json:"user_id"`
	Reason      string     `gorm:"size:255" json:"reason"`
	LockedUntil *time.Time `json:"locked_until"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (WalletLock) TableName() string { return "wallet_locks" }
