package handler

import (
	"fmt"
	"net/http"

	"tokenvault/internal/domain"
	"tokenvault/internal/fee"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type FeeHandler struct {
	calc *fee.Calculator
}

func NewFeeHandler(calc *fee.Calculator) *FeeHandler {
	return &FeeHandler{calc: calc}
}

// Quote prices ?amount= for ?type= (default transfer) at the current rates.
func (h *FeeHandler) Quote(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil || !amount.IsPositive() {
		badRequest(c, "amount must be a positive number")
		return
	}
	if !fee.FitsPrecision(amount) {
		badRequest(c, fmt.Sprintf("amount must have at most %d decimal places", fee.InternalPlaces))
		return
	}
	q := h.calc.Compute(c.DefaultQuery("type", domain.FeeTypeTransfer), amount)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"quote": gin.H{
			"type":       q.Type,
			"rate":       q.Rate.InexactFloat64(),
			"amount":     q.Amount.InexactFloat64(),
			"fee":        q.Fee.InexactFloat64(),
			"net":        q.Net.InexactFloat64(),
			"feeDisplay": q.FeeDisplay,
			"netDisplay": q.NetDisplay,
		},
	})
}
