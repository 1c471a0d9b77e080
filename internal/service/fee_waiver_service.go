package service

import (
	"context"
	"errors"
	"time"

	"tokenvault/internal/domain"
	"tokenvault/internal/models"
	"tokenvault/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FeeWaiver waives a referrer's wallet setup fee. Implementations must be idempotent.
type FeeWaiver interface {
	HandleReferralFeeWaiver(ctx context.Context, referrerID string) (bool, error)
}

// WalletFeeService manages the one-off wallet setup fee.
type WalletFeeService struct {
	repo *repository.SetupFeeRepository
	now  func() time.Time
}

func NewWalletFeeService(repo *repository.SetupFeeRepository) *WalletFeeService {
	return &WalletFeeService{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// HandleReferralFeeWaiver waives the referrer's pending setup fee. It returns false
// when there is nothing pending.
func (s *WalletFeeService) HandleReferralFeeWaiver(ctx context.Context, referrerID string) (bool, error) {
	return s.repo.WaivePending(ctx, referrerID, s.now())
}

// AssessSetupFee records a pending setup fee for userID unless one already exists.
func (s *WalletFeeService) AssessSetupFee(ctx context.Context, userID string, amount decimal.Decimal) error {
	return s.repo.Create(ctx, &models.WalletSetupFee{
		UserID: userID,
		Amount: amount,
		Status: domain.SetupFeeStatusPending,
	})
}

// SetupFeeStatus returns the user's setup fee status, or "" when none was assessed.
func (s *WalletFeeService) SetupFeeStatus(ctx context.Context, userID string) (string, error) {
	f, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return f.Status, nil
}
