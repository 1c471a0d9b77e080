package service

import (
	"context"
	"encoding/json"
	"fmt"

	"tokenvault/internal/metrics"
	"tokenvault/internal/models"
	"tokenvault/internal/outbox"
	"tokenvault/internal/repository"
	"tokenvault/internal/ws"

	"go.uber.org/zap"
)

type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	fcm      *FCMService
	hub      *ws.Hub
	logger   *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, fcm *FCMService, hub *ws.Hub, logger *zap.Logger) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, fcm: fcm, hub: hub, logger: logger.Named("notify")}
}

// Notify stores the notification, then pushes it to open sockets and FCM. Push
// failures are logged and do not fail the call.
func (s *NotificationService) Notify(ctx context.Context, userID, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, socketEvent(n, data))
	}
	s.sendPush(ctx, userID, notifType, title, body, data)
	return nil
}

func socketEvent(n *models.Notification, data map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"event": "notification",
		"id":    n.ID,
		"type":  n.Type,
		"title": n.Title,
		"body":  n.Body,
		"data":  data,
	}
}

func (s *NotificationService) sendPush(ctx context.Context, userID, notifType, title, body string, data map[string]interface{}) {
	if s.fcm == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || u.FCMToken == "" {
		return
	}
	if err := s.fcm.SendToUser(ctx, u.FCMToken, notifType, title, body, data); err != nil {
		metrics.DependencyFailures.WithLabelValues("fcm").Inc()
		s.logger.Warn("fcm push failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// HandleOutboxMessage delivers a queued notification.
func (s *NotificationService) HandleOutboxMessage(ctx context.Context, payload []byte) error {
	var p outbox.NotificationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	return s.Notify(ctx, p.UserID, p.Type, p.Title, p.Body, p.Data)
}

func (s *NotificationService) List(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	return s.repo.ListByUserID(ctx, userID, limit, offset)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// RegisterFCMToken stores the device token used for push delivery.
func (s *NotificationService) RegisterFCMToken(ctx context.Context, p Principal, token string) error {
	if _, err := s.userRepo.EnsureUser(ctx, p.UserID, p.Email); err != nil {
		return err
	}
	return s.userRepo.UpdateFCMToken(ctx, p.UserID, token)
}
