package service

import (
	"context"
	"errors"
	"fmt"
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

// ReferralBonus describes a credited referral bonus.
type ReferralBonus struct {
	ReferrerID string          `json:"referrerId"`
	Bonus      decimal.Decimal `json:"bonus"`
	Percentage int64           `json:"percentage"`
}

// ReferralService pays referrers a share of the stakes made by users they referred.
type ReferralService struct {
	db           *gorm.DB
	cfg          config.LedgerConfig
	referralRepo *repository.ReferralRepository
	walletRepo   *repository.WalletRepository
	outbox       *outbox.Outbox
	waiver       FeeWaiver
	threshold    decimal.Decimal
	logger       *zap.Logger
	now          func() time.Time
}

func NewReferralService(
	db *gorm.DB,
	cfg config.LedgerConfig,
	referralRepo *repository.ReferralRepository,
	walletRepo *repository.WalletRepository,
	ob *outbox.Outbox,
	waiver FeeWaiver,
	logger *zap.Logger,
) *ReferralService {
	logger = logger.Named("referral")
	threshold, err := decimal.NewFromString(cfg.FeeWaiverThreshold)
	if err != nil {
		logger.Warn("invalid fee waiver threshold, using 20", zap.String("value", cfg.FeeWaiverThreshold))
		threshold = decimal.NewFromInt(20)
	}
	return &ReferralService{
		db:           db,
		cfg:          cfg,
		referralRepo: referralRepo,
		walletRepo:   walletRepo,
		outbox:       ob,
		waiver:       waiver,
		threshold:    threshold,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// LinkReferral records that referrerID referred referredID.
func (s *ReferralService) LinkReferral(ctx context.Context, referrerID, referredID string) (*models.ReferralLink, error) {
	if referrerID == "" || referredID == "" || referrerID == referredID {
		return nil, validationError("invalid referral link", "", nil)
	}
	link := &models.ReferralLink{ReferrerID: referrerID, ReferredID: referredID}
	if err := s.referralRepo.CreateLink(ctx, link); err != nil {
		return nil, persistenceError("failed to create referral link", err)
	}
	return link, nil
}

// ApplyStakeBonus credits the staker's referrer for st. It never fails the caller:
// any error is logged and nil is returned.
func (s *ReferralService) ApplyStakeBonus(ctx context.Context, staker *models.User, st *models.Staking) *ReferralBonus {
	if staker.ReferrerID == nil || *staker.ReferrerID == "" {
		return nil
	}
	referrerID := *staker.ReferrerID
	log := s.logger.With(zap.String("staking_id", st.ID), zap.String("referrer_id", referrerID))

	_, err := s.referralRepo.GetLink(ctx, referrerID, staker.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Debug("referrer set without referral link, skipping bonus")
		return nil
	}
	if err != nil {
		s.dependencyFailed(log, "referral_lookup", err)
		return nil
	}

	pct := domain.ReferralBonusPercent[st.DurationDays]
	bonus := st.AmountStaked.Mul(decimal.NewFromInt(pct)).Div(decimal.NewFromInt(100)).Round(fee.InternalPlaces)
	if !bonus.IsPositive() {
		return nil
	}

	now := s.now()
	entryID := uuid.NewString()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		link, err := s.referralRepo.WithTx(tx).GetLink(ctx, referrerID, staker.ID)
		if err != nil {
			return fmt.Errorf("refetch referral link: %w", err)
		}
		wallets := s.walletRepo.WithTx(tx)
		if _, err := wallets.GetOrCreate(ctx, referrerID, s.cfg.Currency); err != nil {
			return fmt.Errorf("ensure referrer wallet: %w", err)
		}
		if err := wallets.AdjustBalance(ctx, referrerID, domain.BalanceFieldPrimary, bonus); err != nil {
			return fmt.Errorf("credit referrer: %w", err)
		}
		earning := &models.ReferralEarning{
			ID:             entryID,
			ReferralLinkID: link.ID,
			StakingID:      st.ID,
			ReferrerID:     referrerID,
			Amount:         bonus,
			Percentage:     pct,
			CreatedAt:      now,
		}
		if err := s.referralRepo.WithTx(tx).CreateEarning(ctx, earning); err != nil {
			return fmt.Errorf("record referral earning: %w", err)
		}
		if err := enqueueLedger(ctx, s.outbox, tx, s.cfg.Currency, now, ledgerEntry{
			id:           entryID,
			userID:       referrerID,
			txType:       domain.TxTypeReferralBonus,
			amount:       bonus,
			net:          bonus,
			fee:          decimal.Zero,
			counterparty: staker.ID,
			reference:    st.ID,
			description:  fmt.Sprintf("%d%% referral bonus on %d-day stake", pct, st.DurationDays),
		}); err != nil {
			return err
		}
		return enqueueNotification(ctx, s.outbox, tx, st.ID, outbox.NotificationPayload{
			UserID: referrerID,
			Type:   domain.NotifReferralBonus,
			Title:  "Referral bonus",
			Body:   fmt.Sprintf("You earned %s %s from a referral stake.", bonus.StringFixed(fee.DisplayPlaces), s.cfg.Currency),
			Data: map[string]interface{}{
				"staking_id": st.ID,
				"bonus":      bonus.String(),
				"percentage": pct,
			},
		})
	})
	if err != nil {
		s.dependencyFailed(log, "referral_bonus", err)
		return nil
	}
	s.outbox.Signal()
	metrics.ReferralBonuses.Inc()
	log.Info("referral bonus credited", zap.String("bonus", bonus.String()), zap.Int64("percentage", pct))

	if st.AmountStaked.GreaterThanOrEqual(s.threshold) {
		s.triggerFeeWaiver(ctx, referrerID)
	}
	return &ReferralBonus{ReferrerID: referrerID, Bonus: bonus, Percentage: pct}
}

func (s *ReferralService) triggerFeeWaiver(ctx context.Context, referrerID string) {
	if s.waiver == nil {
		return
	}
	waived, err := s.waiver.HandleReferralFeeWaiver(ctx, referrerID)
	if err != nil {
		s.dependencyFailed(s.logger.With(zap.String("referrer_id", referrerID)), "fee_waiver", err)
		return
	}
	if waived {
		s.logger.Info("setup fee waived", zap.String("referrer_id", referrerID))
	}
}

// ListEarnings returns the referrer's bonus history. Errors and timeouts yield an
// empty list.
func (s *ReferralService) ListEarnings(ctx context.Context, referrerID string, limit, offset int) []models.ReferralEarning {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()
	list, err := s.referralRepo.ListEarningsByReferrer(ctx, referrerID, limit, offset)
	if err != nil {
		s.dependencyFailed(s.logger.With(zap.String("referrer_id", referrerID)), "list_earnings", err)
		return []models.ReferralEarning{}
	}
	return list
}

func (s *ReferralService) dependencyFailed(log *zap.Logger, dependency string, err error) {
	metrics.DependencyFailures.WithLabelValues(dependency).Inc()
	log.Warn("dependency failed", zap.String("dependency", dependency), zap.Error(err))
}
