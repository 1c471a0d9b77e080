// Package outbox queues side effects in the same transaction as the balance changes
// that cause them and delivers them afterwards with bounded retry.
package outbox

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"tokenvault/internal/domain"
	"tokenvault/internal/models"
	"tokenvault/internal/repository"

	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
)

// NotificationPayload is the body of a notification message.
type NotificationPayload struct {
	UserID string                 `json:"userId"`
	Type   string                 `json:"type"`
	Title  string                 `json:"title"`
	Body   string                 `json:"body"`
	Data   map[string]interface{} `json:"data,omitempty"`
}

type Outbox struct {
	repo *repository.OutboxRepository
	wake chan struct{}
}

func New(repo *repository.OutboxRepository) *Outbox {
	return &Outbox{repo: repo, wake: make(chan struct{}, 1)}
}

// DedupeKey identifies a side effect by kind and a caller-chosen reference.
func DedupeKey(kind, ref string) string {
	sum := blake2b.Sum256([]byte(kind + "\x00" + ref))
	return hex.EncodeToString(sum[:])
}

// Enqueue stores payload on tx. Enqueueing the same kind and ref twice keeps the
// first message only.
func (o *Outbox) Enqueue(ctx context.Context, tx *gorm.DB, kind, ref string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}
	m := &models.OutboxMessage{
		Kind:          kind,
		DedupeKey:     DedupeKey(kind, ref),
		Payload:       string(body),
		Status:        domain.OutboxStatusPending,
		NextAttemptAt: time.Now().UTC(),
	}
	repo := o.repo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	if err := repo.Create(ctx, m); err != nil {
		return fmt.Errorf("enqueue %s: %w", kind, err)
	}
	return nil
}

// Signal wakes the dispatcher. Call it after the enqueueing transaction commits.
func (o *Outbox) Signal() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Outbox) Wakeups() <-chan struct{} {
	return o.wake
}
