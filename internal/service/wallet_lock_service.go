package service

import (
	"context"
	"time"

	"tokenvault/internal/models"
	"tokenvault/internal/repository"
)

// WalletLockChecker decides whether a wallet may stake.
type WalletLockChecker interface {
	IsWalletAllowed(ctx context.Context, userID string) (bool, error)
}

type WalletLockService struct {
	repo *repository.LockRepository
	now  func() time.Time
}

func NewWalletLockService(repo *repository.LockRepository) *WalletLockService {
	return &WalletLockService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *WalletLockService) IsWalletAllowed(ctx context.Context, userID string) (bool, error) {
	locked, err := s.repo.HasActiveLock(ctx, userID, s.now())
	if err != nil {
		return false, err
	}
	return !locked, nil
}

// Lock blocks userID until the given time, or indefinitely when until is nil.
func (s *WalletLockService) Lock(ctx context.Context, userID, reason string, until *time.Time) error {
	return s.repo.Create(ctx, &models.WalletLock{UserID: userID, Reason: reason, LockedUntil: until})
}

func (s *WalletLockService) Unlock(ctx context.Context, userID string) error {
	return s.repo.DeleteByUserID(ctx, userID)
}
