package handler

import (
	"net/http"

	"tokenvault/internal/models"
	"tokenvault/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type StakeHandler struct {
	stakes *service.StakeService
}

func NewStakeHandler(stakes *service.StakeService) *StakeHandler {
	return &StakeHandler{stakes: stakes}
}

type createStakeRequest struct {
	Amount       decimal.Decimal `json:"amount"`
	DurationDays int             `json:"durationDays"`
}

// Create stakes tokens from the caller's wallet.
func (h *StakeHandler) Create(c *gin.Context) {
	var req createStakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount and durationDays are required")
		return
	}
	res, err := h.stakes.CreateStake(c.Request.Context(), principal(c), req.Amount, req.DurationDays)
	if err != nil {
		respondError(c, err)
		return
	}
	body := gin.H{"success": true, "staking": stakingJSON(res.Staking)}
	if b := res.ReferralBonus; b != nil {
		body["referralBonus"] = gin.H{
			"referrerId": b.ReferrerID,
			"bonus":      b.Bonus.InexactFloat64(),
			"percentage": b.Percentage,
		}
	}
	c.JSON(http.StatusCreated, body)
}

func (h *StakeHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	list := h.stakes.ListStakes(c.Request.Context(), principal(c).UserID, limit, offset)
	out := make([]gin.H, 0, len(list))
	for i := range list {
		out = append(out, stakingJSON(&list[i]))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "stakes": out})
}

func stakingJSON(st *models.Staking) gin.H {
	return gin.H{
		"id":            st.ID,
		"amountStaked":  st.AmountStaked.InexactFloat64(),
		"durationDays":  st.DurationDays,
		"rewardPercent": st.RewardPercent,
		"startDate":     st.StartDate,
		"endDate":       st.EndDate,
		"status":        st.Status,
	}
}
