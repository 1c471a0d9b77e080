package router

import (
	"context"
	"net/http"

	"tokenvault/config"
	"tokenvault/internal/domain"
	"tokenvault/internal/fee"
	"tokenvault/internal/handler"
	"tokenvault/internal/middleware"
	"tokenvault/internal/outbox"
	"tokenvault/internal/repository"
	"tokenvault/internal/service"
	"tokenvault/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// Workers are the background loops the HTTP surface depends on.
type Workers struct {
	FeePoller  *fee.Poller
	Dispatcher *outbox.Dispatcher

	limiters []*middleware.KeyedRateLimiter
}

// Start runs every worker until ctx is cancelled.
func (w *Workers) Start(ctx context.Context) {
	go w.FeePoller.Run(ctx)
	go w.Dispatcher.Run(ctx)
}

// Stop releases the rate limiters' sweep goroutines.
func (w *Workers) Stop() {
	for _, l := range w.limiters {
		l.Stop()
	}
}

func Setup(cfg *config.Config, db *gorm.DB, logger *zap.Logger) (*gin.Engine, *Workers) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger.Named("http")))
	r.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	ipLimiter := middleware.NewKeyedRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	userLimiter := middleware.NewKeyedRateLimiter(rate.Limit(cfg.RateLimit.MutationsPerSecond), cfg.RateLimit.MutationBurst)
	r.Use(middleware.RateLimit(ipLimiter))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	stakingRepo := repository.NewStakingRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	outboxRepo := repository.NewOutboxRepository(db)
	lockRepo := repository.NewLockRepository(db)
	setupFeeRepo := repository.NewSetupFeeRepository(db)

	hub := ws.NewHub()
	ob := outbox.New(outboxRepo)

	// Fees
	feeStore := fee.NewStore(fee.DefaultTable())
	feePoller := fee.NewPoller(feeStore, fee.NewSettingsLoader(settingRepo, logger), cfg.Fees.RefreshInterval, logger)
	calc := fee.NewCalculator(feeStore)

	// Services
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath, logger)
	if fcmSvc != nil {
		logger.Info("push notifications enabled")
	} else if cfg.Firebase.ServiceAccountPath != "" {
		logger.Warn("push notifications disabled: failed to init (check service account file)")
	} else {
		logger.Info("push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc, hub, logger)
	ledgerSvc := service.NewLedgerService(txRepo)
	lockSvc := service.NewWalletLockService(lockRepo)
	feeSvc := service.NewWalletFeeService(setupFeeRepo)
	referralSvc := service.NewReferralService(db, cfg.Ledger, referralRepo, walletRepo, ob, feeSvc, logger)
	stakeSvc := service.NewStakeService(db, cfg.Ledger, userRepo, walletRepo, stakingRepo, ob, lockSvc, referralSvc, logger)
	transferSvc := service.NewTransferService(db, cfg.Ledger, userRepo, walletRepo, txRepo, calc, ob, logger)
	walletSvc := service.NewWalletService(cfg.Ledger, userRepo, walletRepo, feeSvc)

	dispatcher := outbox.NewDispatcher(outboxRepo, ob, cfg.Outbox, logger)
	dispatcher.Handle(domain.OutboxKindLedger, ledgerSvc.HandleOutboxMessage)
	dispatcher.Handle(domain.OutboxKindNotification, notifSvc.HandleOutboxMessage)

	// Handlers
	stakeHandler := handler.NewStakeHandler(stakeSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	walletHandler := handler.NewWalletHandler(walletSvc)
	referralHandler := handler.NewReferralHandler(referralSvc)
	feeHandler := handler.NewFeeHandler(calc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)

	r.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/ws/notifications", ws.UpgradeNotificationsWS(&cfg.JWT, hub, logger.Named("ws")))
	api.GET("/fees/quote", feeHandler.Quote)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(&cfg.JWT))
	{
		mutations := middleware.UserRateLimit(userLimiter)

		authed.POST("/stakes", mutations, stakeHandler.Create)
		authed.GET("/stakes", stakeHandler.List)
		authed.POST("/transfers", mutations, transferHandler.Create)
		authed.GET("/wallet", walletHandler.Get)
		authed.GET("/wallet/transactions", transferHandler.Transactions)
		authed.GET("/referrals/earnings", referralHandler.Earnings)

		authed.GET("/notifications", notificationHandler.List)
		authed.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
		authed.PUT("/me/fcm-token", notificationHandler.RegisterFCMToken)
	}

	return r, &Workers{
		FeePoller:  feePoller,
		Dispatcher: dispatcher,
		limiters:   []*middleware.KeyedRateLimiter{ipLimiter, userLimiter},
	}
}
