package domain

const (
	StakingStatusActive    = "ACTIVE"
	StakingStatusCancelled = "CANCELLED"
	StakingStatusCompleted = "COMPLETED"
)

// Ledger transaction types.
const (
	TxTypeStake         = "STAKE"
	TxTypeTransferOut   = "TRANSFER_OUT"
	TxTypeTransferIn    = "TRANSFER_IN"
	TxTypePlatformFee   = "PLATFORM_FEE"
	TxTypeReferralBonus = "REFERRAL_BONUS"
)

const TxStatusCompleted = "COMPLETED"

// Fee schedule keys.
const (
	FeeTypeTransfer = "transfer"
	FeeTypeWithdraw = "withdraw"
	FeeTypeBuy      = "buy"
	FeeTypeSell     = "sell"
)

// SettingFeeRatePrefix namespaces fee rates in system_settings, e.g. "fee_rate.transfer".
const SettingFeeRatePrefix = "fee_rate."

const (
	NotifStakingStarted   = "STAKING_STARTED"
	NotifReferralBonus    = "REFERRAL_BONUS"
	NotifTransferSent     = "TRANSFER_SENT"
	NotifTransferReceived = "TRANSFER_RECEIVED"
)

// Named wallet balances accepted by WalletRepository.AdjustBalance.
const (
	BalanceFieldPrimary = "balance"
	BalanceFieldUnit    = "unit_balance"
)

const (
	SetupFeeStatusPending = "PENDING"
	SetupFeeStatusWaived  = "WAIVED"
	SetupFeeStatusPaid    = "PAID"
)

const (
	OutboxKindLedger       = "ledger"
	OutboxKindNotification = "notification"
)

const (
	OutboxStatusPending = "PENDING"
	OutboxStatusDone    = "DONE"
	OutboxStatusDead    = "DEAD"
)

// StakeRewardPercent maps an allowed staking duration (days) to its reward percent.
var StakeRewardPercent = map[int]int64{
	15:  10,
	30:  15,
	60:  25,
	120: 30,
	180: 50,
	365: 75,
}

// ReferralBonusPercent maps a staking duration (days) to the referrer's bonus percent.
var ReferralBonusPercent = map[int]int64{
	15:  2,
	30:  3,
	60:  4,
	120: 5,
	180: 7,
	365: 10,
}
