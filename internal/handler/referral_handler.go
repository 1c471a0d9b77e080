package handler

import (
	"net/http"

	"tokenvault/internal/service"

	"github.com/gin-gonic/gin"
)

type ReferralHandler struct {
	referrals *service.ReferralService
}

func NewReferralHandler(referrals *service.ReferralService) *ReferralHandler {
	return &ReferralHandler{referrals: referrals}
}

// Earnings lists bonuses the caller earned from referred users' stakes.
func (h *ReferralHandler) Earnings(c *gin.Context) {
	limit, offset := pagination(c)
	list := h.referrals.ListEarnings(c.Request.Context(), principal(c).UserID, limit, offset)
	out := make([]gin.H, 0, len(list))
	for _, e := range list {
		out = append(out, gin.H{
			"id":         e.ID,
			"stakingId":  e.StakingID,
			"amount":     e.Amount.InexactFloat64(),
			"percentage": e.Percentage,
			"createdAt":  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "earnings": out})
}
