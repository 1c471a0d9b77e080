// Package fee computes transaction fees from an immutable, periodically refreshed
// rate table.
package fee

import (
	"sync/atomic"

	"tokenvault/internal/domain"

	"github.com/shopspring/decimal"
)

// Table maps a fee type to its rate. A Table is never mutated after construction.
type Table struct {
	rates map[string]decimal.Decimal
}

// DefaultRates are used for any type the settings store does not override.
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		domain.FeeTypeTransfer: decimal.RequireFromString("0.05"),
		domain.FeeTypeWithdraw: decimal.RequireFromString("0.10"),
		domain.FeeTypeBuy:      decimal.RequireFromString("0.01"),
		domain.FeeTypeSell:     decimal.RequireFromString("0.01"),
	}
}

func NewTable(rates map[string]decimal.Decimal) *Table {
	cp := make(map[string]decimal.Decimal, len(rates))
	for k, v := range rates {
		cp[k] = v
	}
	return &Table{rates: cp}
}

func DefaultTable() *Table {
	return NewTable(DefaultRates())
}

// Rate returns the rate for feeType, or zero for an unknown type.
func (t *Table) Rate(feeType string) decimal.Decimal {
	if r, ok := t.rates[feeType]; ok {
		return r
	}
	return decimal.Zero
}

// Rates returns a copy of the table contents.
func (t *Table) Rates() map[string]decimal.Decimal {
	cp := make(map[string]decimal.Decimal, len(t.rates))
	for k, v := range t.rates {
		cp[k] = v
	}
	return cp
}

// RateSource hands out the current rate table.
type RateSource interface {
	Current() *Table
}

// Store holds the current Table and swaps it atomically on refresh.
type Store struct {
	cur atomic.Pointer[Table]
}

func NewStore(initial *Table) *Store {
	s := &Store{}
	if initial == nil {
		initial = DefaultTable()
	}
	s.cur.Store(initial)
	return s
}

func (s *Store) Current() *Table {
	return s.cur.Load()
}

func (s *Store) Swap(t *Table) {
	s.cur.Store(t)
}
