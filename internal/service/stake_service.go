package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"tokenvault/config"
	"tokenvault/internal/domain"
	"tokenvault/internal/fee"
	"tokenvault/internal/metrics"
	"tokenvault/internal/models"
	"tokenvault/internal/outbox"
	"tokenvault/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StakeResult is the outcome of a committed stake.
type StakeResult struct {
	Staking       *models.Staking
	ReferralBonus *ReferralBonus
}

type StakeService struct {
	db          *gorm.DB
	cfg         config.LedgerConfig
	userRepo    *repository.UserRepository
	walletRepo  *repository.WalletRepository
	stakingRepo *repository.StakingRepository
	outbox      *outbox.Outbox
	locks       WalletLockChecker
	referrals   *ReferralService
	logger      *zap.Logger
	now         func() time.Time
}

func NewStakeService(
	db *gorm.DB,
	cfg config.LedgerConfig,
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	stakingRepo *repository.StakingRepository,
	ob *outbox.Outbox,
	locks WalletLockChecker,
	referrals *ReferralService,
	logger *zap.Logger,
) *StakeService {
	return &StakeService{
		db:          db,
		cfg:         cfg,
		userRepo:    userRepo,
		walletRepo:  walletRepo,
		stakingRepo: stakingRepo,
		outbox:      ob,
		locks:       locks,
		referrals:   referrals,
		logger:      logger.Named("stake"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AllowedDurations returns the accepted staking durations in days, ascending.
func AllowedDurations() []int {
	out := make([]int, 0, len(domain.StakeRewardPercent))
	for d := range domain.StakeRewardPercent {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}

// CreateStake locks amount from the caller's wallet for durationDays. The staking
// row, the debit and the queued side effects commit together; the referral bonus
// runs afterwards and cannot undo the stake.
func (s *StakeService) CreateStake(ctx context.Context, p Principal, amount decimal.Decimal, durationDays int) (*StakeResult, error) {
	if p.UserID == "" {
		return nil, unauthenticatedError()
	}
	if !amount.IsPositive() {
		metrics.StakeRejections.WithLabelValues("validation").Inc()
		return nil, validationError("amount must be greater than zero", "", nil)
	}
	if !fee.FitsPrecision(amount) {
		metrics.StakeRejections.WithLabelValues("validation").Inc()
		return nil, validationError(precisionMessage, "", nil)
	}
	rewardPercent, ok := domain.StakeRewardPercent[durationDays]
	if !ok {
		metrics.StakeRejections.WithLabelValues("validation").Inc()
		return nil, validationError(
			fmt.Sprintf("durationDays must be one of %v", AllowedDurations()),
			fmt.Sprintf("got %d", durationDays),
			map[string]interface{}{"allowedDurations": AllowedDurations()},
		)
	}

	user, err := s.userRepo.EnsureUser(ctx, p.UserID, p.Email)
	if err != nil {
		return nil, persistenceError("failed to load user", err)
	}
	wallet, err := s.walletRepo.GetOrCreate(ctx, user.ID, s.cfg.Currency)
	if err != nil {
		return nil, persistenceError("failed to load wallet", err)
	}

	allowed, err := s.locks.IsWalletAllowed(ctx, user.ID)
	if err != nil {
		return nil, persistenceError("failed to check wallet lock", err)
	}
	if !allowed {
		metrics.StakeRejections.WithLabelValues("locked").Inc()
		return nil, validationError("wallet is locked", "", nil)
	}

	if wallet.Balance.LessThan(amount) {
		metrics.StakeRejections.WithLabelValues("insufficient_balance").Inc()
		return nil, insufficientBalanceError(balanceDetails(amount, wallet.Balance, nil))
	}

	now := s.now()
	st := &models.Staking{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		AmountStaked:  amount,
		DurationDays:  durationDays,
		RewardPercent: rewardPercent,
		StartDate:     now,
		EndDate:       now.AddDate(0, 0, durationDays),
		Status:        domain.StakingStatusActive,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.stakingRepo.WithTx(tx).Create(ctx, st); err != nil {
			return fmt.Errorf("insert staking: %w", err)
		}
		if err := s.walletRepo.WithTx(tx).AdjustBalance(ctx, user.ID, domain.BalanceFieldPrimary, amount.Neg()); err != nil {
			return fmt.Errorf("debit stake: %w", err)
		}
		if err := enqueueLedger(ctx, s.outbox, tx, s.cfg.Currency, now, ledgerEntry{
			id:          uuid.NewString(),
			userID:      user.ID,
			txType:      domain.TxTypeStake,
			amount:      amount,
			fee:         decimal.Zero,
			net:         amount,
			reference:   st.ID,
			description: fmt.Sprintf("%d-day stake at %d%%", durationDays, rewardPercent),
		}); err != nil {
			return err
		}
		return enqueueNotification(ctx, s.outbox, tx, st.ID, outbox.NotificationPayload{
			UserID: user.ID,
			Type:   domain.NotifStakingStarted,
			Title:  "Staking started",
			Body: fmt.Sprintf("You staked %s %s for %d days at %d%% reward.",
				amount.StringFixed(fee.DisplayPlaces), s.cfg.Currency, durationDays, rewardPercent),
			Data: map[string]interface{}{
				"staking_id":    st.ID,
				"amount":        amount.String(),
				"duration_days": durationDays,
			},
		})
	})
	if errors.Is(err, repository.ErrInsufficientBalance) {
		// Lost a race against a concurrent debit; nothing was written.
		metrics.StakeRejections.WithLabelValues("insufficient_balance").Inc()
		return nil, insufficientBalanceError("", nil)
	}
	if err != nil {
		s.logger.Error("stake transaction failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, persistenceError("failed to create stake", err)
	}
	s.outbox.Signal()
	metrics.StakesCreated.Inc()
	s.logger.Info("stake created",
		zap.String("staking_id", st.ID),
		zap.String("user_id", user.ID),
		zap.String("amount", amount.String()),
		zap.Int("duration_days", durationDays),
	)

	result := &StakeResult{Staking: st}
	if s.referrals != nil {
		result.ReferralBonus = s.referrals.ApplyStakeBonus(context.WithoutCancel(ctx), user, st)
	}
	return result, nil
}

// ListStakes returns the user's stakes, newest first. Errors and timeouts yield an
// empty list.
func (s *StakeService) ListStakes(ctx context.Context, userID string, limit, offset int) []models.Staking {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()
	list, err := s.stakingRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		metrics.DependencyFailures.WithLabelValues("list_stakes").Inc()
		s.logger.Warn("list stakes failed", zap.String("user_id", userID), zap.Error(err))
		return []models.Staking{}
	}
	return list
}

var precisionMessage = fmt.Sprintf("amount must have at most %d decimal places", fee.InternalPlaces)

// balanceDetails describes a shortfall. A nil fee is left out.
func balanceDetails(required, available decimal.Decimal, feeAmount *decimal.Decimal) (string, map[string]interface{}) {
	details := fmt.Sprintf("required %s, available %s",
		required.StringFixed(fee.DisplayPlaces), available.StringFixed(fee.DisplayPlaces))
	fields := map[string]interface{}{
		"required":  required.InexactFloat64(),
		"available": available.InexactFloat64(),
	}
	if feeAmount != nil {
		details += ", fee " + feeAmount.StringFixed(fee.DisplayPlaces)
		fields["fee"] = feeAmount.InexactFloat64()
	}
	return details, fields
}
