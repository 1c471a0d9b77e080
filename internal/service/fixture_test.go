package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokenvault/config"
	"tokenvault/internal/domain"
	"tokenvault/internal/fee"
	"tokenvault/internal/models"
	"tokenvault/internal/outbox"
	"tokenvault/internal/repository"
	"tokenvault/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

const (
	aliceID   = "11111111-aaaa-4aaa-8aaa-000000000001"
	bobbyID   = "22222222-bbbb-4bbb-8bbb-000000000002"
	carolID   = "33333333-cccc-4ccc-8ccc-000000000003"
	platform  = "platform-fee-wallet"
	aliceMail = "alice@example.com"
	bobbyMail = "bobby@example.com"
	carolMail = "carol@example.com"
)

type mockWaiver struct {
	mock.Mock
}

func (m *mockWaiver) HandleReferralFeeWaiver(ctx context.Context, referrerID string) (bool, error) {
	args := m.Called(ctx, referrerID)
	return args.Bool(0), args.Error(1)
}

type fixture struct {
	db         *gorm.DB
	cfg        config.LedgerConfig
	users      *repository.UserRepository
	wallets    *repository.WalletRepository
	stakings   *repository.StakingRepository
	referrals  *repository.ReferralRepository
	txs        *repository.TransactionRepository
	outboxRepo *repository.OutboxRepository
	locks      *WalletLockService
	waiver     *mockWaiver
	dispatcher *outbox.Dispatcher
	notifs     *repository.NotificationRepository

	stakeSvc    *StakeService
	referralSvc *ReferralService
	transferSvc *TransferService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	logger := zaptest.NewLogger(t)
	cfg := config.LedgerConfig{
		Currency:           "TKN",
		PlatformFeeUserID:  platform,
		FeeWaiverThreshold: "20",
		ReadTimeout:        time.Second,
	}
	f := &fixture{
		db:         db,
		cfg:        cfg,
		users:      repository.NewUserRepository(db),
		wallets:    repository.NewWalletRepository(db),
		stakings:   repository.NewStakingRepository(db),
		referrals:  repository.NewReferralRepository(db),
		txs:        repository.NewTransactionRepository(db),
		outboxRepo: repository.NewOutboxRepository(db),
		notifs:     repository.NewNotificationRepository(db),
		waiver:     &mockWaiver{},
	}
	f.locks = NewWalletLockService(repository.NewLockRepository(db))
	ob := outbox.New(f.outboxRepo)
	f.referralSvc = NewReferralService(db, cfg, f.referrals, f.wallets, ob, f.waiver, logger)
	f.stakeSvc = NewStakeService(db, cfg, f.users, f.wallets, f.stakings, ob, f.locks, f.referralSvc, logger)
	f.transferSvc = NewTransferService(db, cfg, f.users, f.wallets, f.txs, fee.NewCalculator(fee.NewStore(nil)), ob, logger)

	notifSvc := NewNotificationService(f.notifs, f.users, nil, nil, logger)
	f.dispatcher = outbox.NewDispatcher(f.outboxRepo, ob, config.OutboxConfig{BatchSize: 100, MaxAttempts: 3, BaseBackoff: time.Second, PollInterval: time.Second}, logger)
	f.dispatcher.Handle(domain.OutboxKindLedger, NewLedgerService(f.txs).HandleOutboxMessage)
	f.dispatcher.Handle(domain.OutboxKindNotification, notifSvc.HandleOutboxMessage)
	return f
}

func (f *fixture) seedUser(t *testing.T, id, email string, createdAt time.Time, referrerID string) *models.User {
	t.Helper()
	u := &models.User{ID: id, Email: email, CreatedAt: createdAt}
	if referrerID != "" {
		u.ReferrerID = &referrerID
	}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) fund(t *testing.T, userID, amount string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.wallets.GetOrCreate(ctx, userID, f.cfg.Currency)
	require.NoError(t, err)
	require.NoError(t, f.wallets.AdjustBalance(ctx, userID, domain.BalanceFieldPrimary, decimal.RequireFromString(amount)))
}

func (f *fixture) balance(t *testing.T, userID string) decimal.Decimal {
	t.Helper()
	w, err := f.wallets.GetByUserID(context.Background(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero
	}
	require.NoError(t, err)
	return w.Balance
}

func (f *fixture) drainOutbox(t *testing.T) {
	t.Helper()
	_, err := f.dispatcher.DispatchOnce(context.Background())
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
