package handler

import (
	"net/http"

	"tokenvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type TransferHandler struct {
	transfers *service.TransferService
}

func NewTransferHandler(transfers *service.TransferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type createTransferRequest struct {
	RecipientID string          `json:"recipientId"`
	Amount      decimal.Decimal `json:"amount"`
	Note        string          `json:"note"`
}

// Create sends tokens to the user addressed by recipientId.
func (h *TransferHandler) Create(c *gin.Context) {
	var req createTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "recipientId and amount are required")
		return
	}
	res, err := h.transfers.Transfer(c.Request.Context(), principal(c), req.RecipientID, req.Amount, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	t := res.Transfer
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"transfer": gin.H{
			"id":             t.ID,
			"amount":         t.Amount.InexactFloat64(),
			"fee":            t.Fee.InexactFloat64(),
			"netAmount":      t.NetAmount.InexactFloat64(),
			"recipientEmail": t.RecipientEmail,
			"note":           t.Note,
			"createdAt":      t.CreatedAt,
		},
		"balances": gin.H{
			"senderBalance":    res.Balances.SenderBalance.InexactFloat64(),
			"recipientBalance": res.Balances.RecipientBalance.InexactFloat64(),
		},
	})
}

// Transactions lists the caller's ledger entries.
func (h *TransferHandler) Transactions(c *gin.Context) {
	limit, offset := pagination(c)
	list := h.transfers.ListTransactions(c.Request.Context(), principal(c).UserID, limit, offset)
	out := make([]gin.H, 0, len(list))
	for _, t := range list {
		item := gin.H{
			"id":          t.ID,
			"type":        t.Type,
			"amount":      t.Amount.InexactFloat64(),
			"fee":         t.FeeAmount.InexactFloat64(),
			"netAmount":   t.NetAmount.InexactFloat64(),
			"currency":    t.Currency,
			"status":      t.Status,
			"reference":   t.Reference,
			"description": t.Description,
			"createdAt":   t.CreatedAt,
		}
		if t.CounterpartyID != nil {
			item["counterpartyId"] = *t.CounterpartyID
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "transactions": out})
}
