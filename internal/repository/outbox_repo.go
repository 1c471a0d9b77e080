package repository

import (
	"context"
	"time"

	"tokenvault/internal/domain"
	"tokenvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OutboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: db}
}

func (r *OutboxRepository) WithTx(tx *gorm.DB) *OutboxRepository {
	return &OutboxRepository{db: tx}
}

// Create queues m. A message whose dedupe key is already queued is dropped.
func (r *OutboxRepository) Create(ctx context.Context, m *models.OutboxMessage) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "dedupe_key"}}, DoNothing: true}).
		Create(m).Error
}

// ListDue returns pending messages whose next attempt is due, oldest first.
func (r *OutboxRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]models.OutboxMessage, error) {
	var list []models.OutboxMessage
	err := r.db.WithContext(ctx).
		Where("status = ? AND next_attempt_at <= ?", domain.OutboxStatusPending, now).
		Order("id ASC").Limit(limit).
		Find(&list).Error
	return list, err
}

// Claim leases a due message to the caller until leaseUntil. It fails when another
// dispatcher has already claimed or processed the message.
func (r *OutboxRepository) Claim(ctx context.Context, m *models.OutboxMessage, now, leaseUntil time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.OutboxMessage{}).
		Where("id = ? AND status = ? AND attempts = ? AND next_attempt_at <= ?",
			m.ID, domain.OutboxStatusPending, m.Attempts, now).
		Update("next_attempt_at", leaseUntil)
	return res.RowsAffected == 1, res.Error
}

func (r *OutboxRepository) GetByDedupeKey(ctx context.Context, key string) (*models.OutboxMessage, error) {
	var m models.OutboxMessage
	if err := r.db.WithContext(ctx).Where("dedupe_key = ?", key).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *OutboxRepository) MarkDone(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.OutboxStatusDone,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": "",
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *OutboxRepository) MarkRetry(ctx context.Context, id uint, next time.Time, lastErr string) error {
	return r.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":        gorm.Expr("attempts + 1"),
			"next_attempt_at": next,
			"last_error":      truncate(lastErr, 512),
			"updated_at":      time.Now().UTC(),
		}).Error
}

func (r *OutboxRepository) MarkDead(ctx context.Context, id uint, lastErr string) error {
	return r.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     domain.OutboxStatusDead,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": truncate(lastErr, 512),
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *OutboxRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.OutboxMessage{}).Where("status = ?", status).Count(&n).Error
	return n, err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
