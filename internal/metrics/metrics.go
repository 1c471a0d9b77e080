package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	StakesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_stakes_created_total",
			Help: "Stakes committed",
		},
	)

	StakeRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_stake_rejections_total",
			Help: "Stake requests rejected, by reason",
		},
		[]string{"reason"},
	)

	TransfersCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_transfers_completed_total",
			Help: "Peer transfers committed",
		},
	)

	TransferRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_transfer_rejections_total",
			Help: "Transfer requests rejected, by reason",
		},
		[]string{"reason"},
	)

	ReferralBonuses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wallet_referral_bonuses_total",
			Help: "Referral bonuses credited",
		},
	)

	DependencyFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_dependency_failures_total",
			Help: "Best-effort side effects that failed and were swallowed",
		},
		[]string{"dependency"},
	)

	OutboxMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_outbox_messages_total",
			Help: "Outbox deliveries, by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	FeeRateRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_fee_rate_refreshes_total",
			Help: "Fee rate table reloads, by result",
		},
		[]string{"result"},
	)
)
