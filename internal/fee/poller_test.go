package fee

import (
	"context"
	"errors"
	"testing"

	"tokenvault/internal/domain"
	"tokenvault/internal/repository"
	"tokenvault/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubLoader struct {
	rates map[string]decimal.Decimal
	err   error
}

func (l *stubLoader) LoadRates(context.Context) (map[string]decimal.Decimal, error) {
	return l.rates, l.err
}

func TestPollerRefreshMergesOverDefaults(t *testing.T) {
	store := NewStore(nil)
	loader := &stubLoader{rates: map[string]decimal.Decimal{domain.FeeTypeTransfer: dec("0.02")}}
	p := NewPoller(store, loader, 0, zaptest.NewLogger(t))

	require.NoError(t, p.Refresh(context.Background()))
	require.True(t, store.Current().Rate(domain.FeeTypeTransfer).Equal(dec("0.02")))
	require.True(t, store.Current().Rate(domain.FeeTypeWithdraw).Equal(dec("0.10")))
}

func TestPollerKeepsLastGoodTableOnError(t *testing.T) {
	store := NewStore(nil)
	loader := &stubLoader{rates: map[string]decimal.Decimal{domain.FeeTypeTransfer: dec("0.03")}}
	p := NewPoller(store, loader, 0, zaptest.NewLogger(t))
	require.NoError(t, p.Refresh(context.Background()))
	before := store.Current()

	loader.err = errors.New("db down")
	require.Error(t, p.Refresh(context.Background()))
	require.Same(t, before, store.Current())
	require.True(t, store.Current().Rate(domain.FeeTypeTransfer).Equal(dec("0.03")))
}

func TestSettingsLoaderReadsValidRates(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	settings := repository.NewSettingRepository(db)
	require.NoError(t, settings.Set(ctx, "fee_rate.transfer", "0.03"))
	require.NoError(t, settings.Set(ctx, "fee_rate.buy", "1.5"))
	require.NoError(t, settings.Set(ctx, "fee_rate.sell", "abc"))
	require.NoError(t, settings.Set(ctx, "fee_rate.withdraw", "-0.1"))
	require.NoError(t, settings.Set(ctx, "maintenance_mode", "false"))

	rates, err := NewSettingsLoader(settings, zaptest.NewLogger(t)).LoadRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 1)
	require.True(t, rates[domain.FeeTypeTransfer].Equal(dec("0.03")))
}

func TestSeededDefaultsRoundTrip(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	settings := repository.NewSettingRepository(db)
	require.NoError(t, settings.SeedDefaults(ctx, DefaultSettings()))
	require.NoError(t, settings.Set(ctx, "fee_rate.transfer", "0.04"))
	// Seeding again must not overwrite an operator's change.
	require.NoError(t, settings.SeedDefaults(ctx, DefaultSettings()))

	store := NewStore(nil)
	p := NewPoller(store, NewSettingsLoader(settings, zaptest.NewLogger(t)), 0, zaptest.NewLogger(t))
	require.NoError(t, p.Refresh(ctx))
	require.True(t, store.Current().Rate(domain.FeeTypeTransfer).Equal(dec("0.04")))
	require.True(t, store.Current().Rate(domain.FeeTypeBuy).Equal(dec("0.01")))
}
