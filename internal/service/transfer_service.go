package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"tokenvault/config"
	"tokenvault/internal/domain"
	"tokenvault/internal/fee"
	"tokenvault/internal/identifier"
	"tokenvault/internal/metrics"
	"tokenvault/internal/models"
	"tokenvault/internal/outbox"
	"tokenvault/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxNoteLength = 255

type TransferReceipt struct {
	ID             string
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	NetAmount      decimal.Decimal
	RecipientEmail string
	Note           string
	CreatedAt      time.Time
}

type TransferBalances struct {
	SenderBalance    decimal.Decimal
	RecipientBalance decimal.Decimal
}

type TransferResult struct {
	Transfer TransferReceipt
	Balances TransferBalances
}

// TransferService moves tokens between users, charging the transfer fee to the
// sender and crediting it to the platform fee wallet.
type TransferService struct {
	db         *gorm.DB
	cfg        config.LedgerConfig
	userRepo   *repository.UserRepository
	walletRepo *repository.WalletRepository
	txRepo     *repository.TransactionRepository
	fees       *fee.Calculator
	outbox     *outbox.Outbox
	logger     *zap.Logger
	now        func() time.Time
}

func NewTransferService(
	db *gorm.DB,
	cfg config.LedgerConfig,
	userRepo *repository.UserRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	fees *fee.Calculator,
	ob *outbox.Outbox,
	logger *zap.Logger,
) *TransferService {
	return &TransferService{
		db:         db,
		cfg:        cfg,
		userRepo:   userRepo,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		fees:       fees,
		outbox:     ob,
		logger:     logger.Named("transfer"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Transfer sends amount to the user addressed by recipientID. The sender pays
// amount plus the transfer fee. All balance changes and queued side effects
// commit in one transaction.
func (s *TransferService) Transfer(ctx context.Context, p Principal, recipientID string, amount decimal.Decimal, note string) (*TransferResult, error) {
	if p.UserID == "" {
		return nil, unauthenticatedError()
	}
	if !amount.IsPositive() {
		return nil, s.reject("validation", validationError("amount must be greater than zero", "", nil))
	}
	if !fee.FitsPrecision(amount) {
		return nil, s.reject("validation", validationError(precisionMessage, "", nil))
	}
	if n := utf8.RuneCountInString(note); n > maxNoteLength {
		return nil, s.reject("validation", validationError(
			fmt.Sprintf("note must be at most %d characters", maxNoteLength), fmt.Sprintf("got %d", n), nil))
	}
	target, err := identifier.Parse(recipientID)
	if err != nil {
		return nil, s.reject("validation", validationError("invalid recipient identifier",
			"expected XXXX-YYYYYYYY or XXXX-YYYY-YYYY",
			map[string]interface{}{"acceptedFormats": []string{"XXXX-YYYYYYYY", "XXXX-YYYY-YYYY"}},
		))
	}

	sender, err := s.userRepo.EnsureUser(ctx, p.UserID, p.Email)
	if err != nil {
		return nil, persistenceError("failed to load user", err)
	}
	if target == sender.Identifier() {
		return nil, s.reject("self_transfer", validationError("cannot transfer to yourself", "", nil))
	}

	quote := s.fees.Compute(domain.FeeTypeTransfer, amount)
	total := amount.Add(quote.Fee)

	senderWallet, err := s.walletRepo.GetOrCreate(ctx, sender.ID, s.cfg.Currency)
	if err != nil {
		return nil, persistenceError("failed to load wallet", err)
	}
	if senderWallet.Balance.LessThan(total) {
		return nil, s.reject("insufficient_balance", insufficientBalanceError(balanceDetails(total, senderWallet.Balance, &quote.Fee)))
	}

	recipient, err := s.resolveRecipient(ctx, target)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, s.reject("not_found", notFoundError("recipient not found"))
	}
	if err != nil {
		return nil, persistenceError("failed to resolve recipient", err)
	}
	if recipient.ID == sender.ID {
		return nil, s.reject("self_transfer", validationError("cannot transfer to yourself", "", nil))
	}

	transferID := uuid.NewString()
	now := s.now()
	var balances TransferBalances
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		wallets := s.walletRepo.WithTx(tx)
		if _, err := wallets.GetOrCreate(ctx, recipient.ID, s.cfg.Currency); err != nil {
			return fmt.Errorf("ensure recipient wallet: %w", err)
		}
		deltas := map[string]decimal.Decimal{
			sender.ID:    total.Neg(),
			recipient.ID: amount,
		}
		if quote.Fee.IsPositive() {
			if _, err := wallets.GetOrCreate(ctx, s.cfg.PlatformFeeUserID, s.cfg.Currency); err != nil {
				return fmt.Errorf("ensure platform fee wallet: %w", err)
			}
			deltas[s.cfg.PlatformFeeUserID] = deltas[s.cfg.PlatformFeeUserID].Add(quote.Fee)
		}
		if err := applyDeltas(ctx, wallets, deltas); err != nil {
			return err
		}

		if err := s.enqueueEffects(ctx, tx, transferID, now, sender, recipient, amount, quote, note); err != nil {
			return err
		}

		sw, err := wallets.GetByUserID(ctx, sender.ID)
		if err != nil {
			return fmt.Errorf("reload sender wallet: %w", err)
		}
		rw, err := wallets.GetByUserID(ctx, recipient.ID)
		if err != nil {
			return fmt.Errorf("reload recipient wallet: %w", err)
		}
		balances = TransferBalances{SenderBalance: sw.Balance, RecipientBalance: rw.Balance}
		return nil
	})
	if errors.Is(err, repository.ErrInsufficientBalance) {
		return nil, s.reject("insufficient_balance", insufficientBalanceError("", nil))
	}
	if err != nil {
		s.logger.Error("transfer transaction failed", zap.String("sender_id", sender.ID), zap.Error(err))
		return nil, persistenceError("failed to complete transfer", err)
	}
	s.outbox.Signal()
	metrics.TransfersCompleted.Inc()
	s.logger.Info("transfer completed",
		zap.String("transfer_id", transferID),
		zap.String("sender_id", sender.ID),
		zap.String("recipient_id", recipient.ID),
		zap.String("amount", amount.String()),
		zap.String("fee", quote.Fee.String()),
	)

	return &TransferResult{
		Transfer: TransferReceipt{
			ID:             transferID,
			Amount:         amount,
			Fee:            quote.Fee,
			NetAmount:      quote.Net,
			RecipientEmail: recipient.Email,
			Note:           note,
			CreatedAt:      now,
		},
		Balances: balances,
	}, nil
}

// applyDeltas applies balance changes in user id order so concurrent transfers
// between the same wallets take row locks in the same order.
func applyDeltas(ctx context.Context, wallets *repository.WalletRepository, deltas map[string]decimal.Decimal) error {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if deltas[id].IsZero() {
			continue
		}
		if err := wallets.AdjustBalance(ctx, id, domain.BalanceFieldPrimary, deltas[id]); err != nil {
			return fmt.Errorf("adjust wallet %s: %w", id, err)
		}
	}
	return nil
}

func (s *TransferService) enqueueEffects(
	ctx context.Context,
	tx *gorm.DB,
	transferID string,
	at time.Time,
	sender, recipient *models.User,
	amount decimal.Decimal,
	quote fee.Quote,
	note string,
) error {
	entries := []ledgerEntry{
		{
			id:           transferID,
			userID:       sender.ID,
			txType:       domain.TxTypeTransferOut,
			amount:       amount,
			fee:          quote.Fee,
			net:          quote.Net,
			feeReceiver:  s.cfg.PlatformFeeUserID,
			counterparty: recipient.ID,
			reference:    transferID,
			description:  note,
		},
		{
			id:           uuid.NewString(),
			userID:       recipient.ID,
			txType:       domain.TxTypeTransferIn,
			amount:       amount,
			fee:          decimal.Zero,
			net:          amount,
			counterparty: sender.ID,
			reference:    transferID,
			description:  note,
		},
	}
	if quote.Fee.IsPositive() {
		entries = append(entries, ledgerEntry{
			id:           uuid.NewString(),
			userID:       s.cfg.PlatformFeeUserID,
			txType:       domain.TxTypePlatformFee,
			amount:       quote.Fee,
			fee:          decimal.Zero,
			net:          quote.Fee,
			counterparty: sender.ID,
			reference:    transferID,
			description:  "transfer fee",
		})
	}
	for _, e := range entries {
		if err := enqueueLedger(ctx, s.outbox, tx, s.cfg.Currency, at, e); err != nil {
			return err
		}
	}

	display := amount.StringFixed(fee.DisplayPlaces)
	notes := []outbox.NotificationPayload{
		{
			UserID: sender.ID,
			Type:   domain.NotifTransferSent,
			Title:  "Transfer sent",
			Body:   fmt.Sprintf("You sent %s %s to %s.", display, s.cfg.Currency, recipient.Identifier()),
			Data: map[string]interface{}{
				"transfer_id": transferID,
				"amount":      amount.String(),
				"fee":         quote.Fee.String(),
			},
		},
		{
			UserID: recipient.ID,
			Type:   domain.NotifTransferReceived,
			Title:  "Transfer received",
			Body:   fmt.Sprintf("You received %s %s from %s.", display, s.cfg.Currency, sender.Identifier()),
			Data: map[string]interface{}{
				"transfer_id": transferID,
				"amount":      amount.String(),
			},
		},
	}
	for _, n := range notes {
		if err := enqueueNotification(ctx, s.outbox, tx, transferID, n); err != nil {
			return err
		}
	}
	return nil
}

// resolveRecipient finds the user addressed by id. An exact tag match wins; the
// prefix/suffix pair is tried next. When several users share an identifier the
// earliest created one is chosen.
func (s *TransferService) resolveRecipient(ctx context.Context, id identifier.ID) (*models.User, error) {
	matches, err := s.userRepo.FindByPublicTag(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		matches, err = s.userRepo.FindByPublicParts(ctx, id.Prefix, id.Suffix)
		if err != nil {
			return nil, err
		}
	}
	if len(matches) == 0 {
		if n, err := s.userRepo.CountByPublicPrefix(ctx, id.Prefix); err == nil && n > 0 {
			s.logger.Warn("recipient prefix matched without suffix, not resolving",
				zap.String("identifier", id.String()), zap.Int64("prefix_matches", n))
		}
		return nil, gorm.ErrRecordNotFound
	}
	if len(matches) > 1 {
		s.logger.Warn("identifier collision, using earliest account",
			zap.String("identifier", id.String()),
			zap.Int("candidates", len(matches)),
			zap.String("chosen_user_id", matches[0].ID),
		)
	}
	return &matches[0], nil
}

// ListTransactions returns the user's ledger entries, newest first. Errors and
// timeouts yield an empty list.
func (s *TransferService) ListTransactions(ctx context.Context, userID string, limit, offset int) []models.Transaction {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()
	list, err := s.txRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		metrics.DependencyFailures.WithLabelValues("list_transactions").Inc()
		s.logger.Warn("list transactions failed", zap.String("user_id", userID), zap.Error(err))
		return []models.Transaction{}
	}
	return list
}

// Quote prices feeType for amount at the current rates.
func (s *TransferService) Quote(feeType string, amount decimal.Decimal) fee.Quote {
	return s.fees.Compute(feeType, amount)
}

func (s *TransferService) reject(reason string, err *Error) *Error {
	metrics.TransferRejections.WithLabelValues(reason).Inc()
	return err
}
