package fee

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tokenvault/internal/domain"
	"tokenvault/internal/metrics"
	"tokenvault/internal/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Loader reads configured rates keyed by fee type.
type Loader interface {
	LoadRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

type settingsReader interface {
	GetByPrefix(ctx context.Context, prefix string) ([]models.SystemSetting, error)
}

// SettingsLoader reads rates from fee_rate.<type> system settings.
type SettingsLoader struct {
	settings settingsReader
	logger   *zap.Logger
}

func NewSettingsLoader(settings settingsReader, logger *zap.Logger) *SettingsLoader {
	return &SettingsLoader{settings: settings, logger: logger}
}

func (l *SettingsLoader) LoadRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	rows, err := l.settings.GetByPrefix(ctx, domain.SettingFeeRatePrefix)
	if err != nil {
		return nil, fmt.Errorf("load fee settings: %w", err)
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		if !strings.HasPrefix(row.Key, domain.SettingFeeRatePrefix) {
			continue
		}
		feeType := strings.TrimPrefix(row.Key, domain.SettingFeeRatePrefix)
		rate, err := decimal.NewFromString(strings.TrimSpace(row.Value))
		if err != nil || rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			l.logger.Warn("ignoring fee rate setting", zap.String("key", row.Key), zap.String("value", row.Value))
			continue
		}
		out[feeType] = rate
	}
	return out, nil
}

// DefaultSettings returns the seed values for the fee rate settings.
func DefaultSettings() map[string]string {
	out := make(map[string]string)
	for k, v := range DefaultRates() {
		out[domain.SettingFeeRatePrefix+k] = v.String()
	}
	return out
}

// Poller periodically reloads rates into a Store. A failed reload leaves the
// previous table in place.
type Poller struct {
	store    *Store
	loader   Loader
	interval time.Duration
	logger   *zap.Logger
}

func NewPoller(store *Store, loader Loader, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{store: store, loader: loader, interval: interval, logger: logger.Named("fee")}
}

// Refresh loads rates once and swaps the table on success.
func (p *Poller) Refresh(ctx context.Context) error {
	loaded, err := p.loader.LoadRates(ctx)
	if err != nil {
		metrics.FeeRateRefreshes.WithLabelValues("error").Inc()
		p.logger.Warn("fee rate refresh failed, keeping previous table", zap.Error(err))
		return err
	}
	rates := DefaultRates()
	for k, v := range loaded {
		rates[k] = v
	}
	p.store.Swap(NewTable(rates))
	metrics.FeeRateRefreshes.WithLabelValues("ok").Inc()
	return nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	_ = p.Refresh(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = p.Refresh(ctx)
		}
	}
}
