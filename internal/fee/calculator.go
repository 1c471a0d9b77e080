package fee

import (
	"github.com/shopspring/decimal"
)

const (
	// InternalPlaces is the precision fees are stored at.
	InternalPlaces = 6
	// DisplayPlaces is the precision fees are shown at.
	DisplayPlaces = 2
)

// FitsPrecision reports whether amount has no digits beyond InternalPlaces, so
// storing it neither rounds nor truncates.
func FitsPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(InternalPlaces))
}

type Quote struct {
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Rate       decimal.Decimal `json:"rate"`
	Fee        decimal.Decimal `json:"fee"`
	Net        decimal.Decimal `json:"net"`
	FeeDisplay string          `json:"feeDisplay"`
	NetDisplay string          `json:"netDisplay"`
}

type Calculator struct {
	rates RateSource
}

func NewCalculator(rates RateSource) *Calculator {
	return &Calculator{rates: rates}
}

// Compute quotes the fee for amount. The amount is not clamped: a negative amount
// yields a negative fee.
func (c *Calculator) Compute(feeType string, amount decimal.Decimal) Quote {
	rate := c.rates.Current().Rate(feeType)
	fee := amount.Mul(rate).Round(InternalPlaces)
	net := amount.Sub(fee)
	return Quote{
		Type:       feeType,
		Amount:     amount,
		Rate:       rate,
		Fee:        fee,
		Net:        net,
		FeeDisplay: fee.StringFixed(DisplayPlaces),
		NetDisplay: net.StringFixed(DisplayPlaces),
	}
}
