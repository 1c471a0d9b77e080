package models

import (
	"time"
)

// OutboxMessage is a side effect (ledger append, notification) queued in the same
// database transaction as the balance change that caused it.
type OutboxMessage struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Kind          string    `gorm:"size:40;not null;index" json:"kind"`
	DedupeKey     string    `gorm:"size:64;not null;uniqueIndex" json:"dedupe_key"`
	Payload       string    `gorm:"type:text;not null" json:"payload"`
	Status        string    `gorm:"size:16;not null;index:idx_outbox_due,priority:1" json:"status"`
	Attempts      int       `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt time.Time `gorm:"not null;index:idx_outbox_due,priority:2" json:"next_attempt_at"`
	LastError     string    `gorm:"size:512" json:"last_error"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (OutboxMessage) TableName() string { return "outbox_messages" }
