package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tokenvault/internal/domain"
	"tokenvault/internal/models"
	"tokenvault/internal/outbox"
	"tokenvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LedgerService appends ledger entries delivered through the outbox.
type LedgerService struct {
	txRepo *repository.TransactionRepository
}

func NewLedgerService(txRepo *repository.TransactionRepository) *LedgerService {
	return &LedgerService{txRepo: txRepo}
}

// HandleOutboxMessage appends the encoded entry. Redelivery is a no-op.
func (s *LedgerService) HandleOutboxMessage(ctx context.Context, payload []byte) error {
	var t models.Transaction
	if err := json.Unmarshal(payload, &t); err != nil {
		return fmt.Errorf("decode ledger entry: %w", err)
	}
	if t.ID == "" || t.UserID == "" {
		return fmt.Errorf("ledger entry missing id or user")
	}
	return s.txRepo.Append(ctx, &t)
}

type ledgerEntry struct {
	id           string
	userID       string
	txType       string
	amount       decimal.Decimal
	fee          decimal.Decimal
	net          decimal.Decimal
	feeReceiver  string
	counterparty string
	reference    string
	description  string
}

func (e ledgerEntry) model(currency string, at time.Time) *models.Transaction {
	t := &models.Transaction{
		ID:          e.id,
		UserID:      e.userID,
		Type:        e.txType,
		Amount:      e.amount,
		Currency:    currency,
		Status:      domain.TxStatusCompleted,
		FeeAmount:   e.fee,
		NetAmount:   e.net,
		Reference:   e.reference,
		Description: e.description,
		CreatedAt:   at,
	}
	if e.feeReceiver != "" {
		t.FeeReceiverID = &e.feeReceiver
	}
	if e.counterparty != "" {
		t.CounterpartyID = &e.counterparty
	}
	return t
}

// enqueueLedger queues e on tx, keyed by its id.
func enqueueLedger(ctx context.Context, ob *outbox.Outbox, tx *gorm.DB, currency string, at time.Time, e ledgerEntry) error {
	return ob.Enqueue(ctx, tx, domain.OutboxKindLedger, e.id, e.model(currency, at))
}

// enqueueNotification queues a notification for userID, keyed by type and reference.
func enqueueNotification(ctx context.Context, ob *outbox.Outbox, tx *gorm.DB, reference string, n outbox.NotificationPayload) error {
	return ob.Enqueue(ctx, tx, domain.OutboxKindNotification, n.Type+":"+reference+":"+n.UserID, n)
}
