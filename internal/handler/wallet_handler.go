package handler

import (
	"net/http"

	"tokenvault/internal/service"

	"github.com/gin-gonic/gin"
)

type WalletHandler struct {
	wallets *service.WalletService
}

func NewWalletHandler(wallets *service.WalletService) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

// Get returns the caller's balances and public account identifier.
func (h *WalletHandler) Get(c *gin.Context) {
	v, err := h.wallets.GetWallet(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	wallet := gin.H{
		"balance":     v.Wallet.Balance.InexactFloat64(),
		"unitBalance": v.Wallet.UnitBalance.InexactFloat64(),
		"currency":    v.Wallet.Currency,
		"identifier":  v.Identifier,
	}
	if v.SetupFeeStatus != "" {
		wallet["setupFeeStatus"] = v.SetupFeeStatus
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "wallet": wallet})
}
