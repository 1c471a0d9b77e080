package service

import (
	"context"

	"tokenvault/config"
	"tokenvault/internal/models"
	"tokenvault/internal/repository"
)

// WalletView is the caller's wallet together with its public identifier.
type WalletView struct {
	Wallet         *models.Wallet
	Identifier     string
	SetupFeeStatus string
}

type WalletService struct {
	cfg        config.LedgerConfig
	userRepo   *repository.UserRepository
	walletRepo *repository.WalletRepository
	setupFees  *WalletFeeService
}

func NewWalletService(cfg config.LedgerConfig, userRepo *repository.UserRepository, walletRepo *repository.WalletRepository, setupFees *WalletFeeService) *WalletService {
	return &WalletService{cfg: cfg, userRepo: userRepo, walletRepo: walletRepo, setupFees: setupFees}
}

// GetWallet returns the caller's wallet, creating the user and wallet on first use.
func (s *WalletService) GetWallet(ctx context.Context, p Principal) (*WalletView, error) {
	if p.UserID == "" {
		return nil, unauthenticatedError()
	}
	user, err := s.userRepo.EnsureUser(ctx, p.UserID, p.Email)
	if err != nil {
		return nil, persistenceError("failed to load user", err)
	}
	wallet, err := s.walletRepo.GetOrCreate(ctx, user.ID, s.cfg.Currency)
	if err != nil {
		return nil, persistenceError("failed to load wallet", err)
	}
	view := &WalletView{Wallet: wallet, Identifier: user.Identifier().String()}
	if s.setupFees != nil {
		status, err := s.setupFees.SetupFeeStatus(ctx, user.ID)
		if err != nil {
			return nil, persistenceError("failed to load setup fee", err)
		}
		view.SetupFeeStatus = status
	}
	return view, nil
}
