package handler

import (
	"context"

	"github.com/affiliate/backend/internal/application/ledger"
	"github.com/gin-gonic/gin"
)

// LedgerService is the points and links side of the application
type LedgerService interface {
	GenerateLink(ctx context.Context, req ledger.GenerateLinkRequest) (*ledger.GenerateLinkResponse, error)
	Rewards(balance int) []ledger.RewardResponse
	Redeem(ctx context.Context, userID, rewardID string, req ledger.RedeemRequest) (*ledger.RedeemResponse, error)
}

var _ LedgerService = (*ledger.LedgerService)(nil)

// RewardsQuery is the balance the page currently displays
type RewardsQuery struct {
	Balance int `form:"balance" binding:"min=0"`
}

// LedgerHandler handles affiliate links and reward redemption
type LedgerHandler struct {
	BaseHandler
	service LedgerService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service LedgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// GenerateLink godoc
//
//	@Summary	Ask the platform for a tracked affiliate link
//	@Tags		ledger
//	@Accept		json
//	@Produce	json
//	@Param		request	body		ledger.GenerateLinkRequest	true	"Brand"
//	@Success	201		{object}	dto.Response
//	@Failure	422		{object}	dto.Response
//	@Failure	502		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/affiliate-links [post]
func (h *LedgerHandler) GenerateLink(c *gin.Context) {
	if _, ok := h.requireUser(c); !ok {
		return
	}

	var req ledger.GenerateLinkRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.GenerateLink(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ListRewards returns the reward catalog with redeemability for ?balance=
func (h *LedgerHandler) ListRewards(c *gin.Context) {
	var q RewardsQuery
	if !h.bindQuery(c, &q) {
		return
	}
	h.Success(c, h.service.Rewards(q.Balance))
}

// Redeem godoc
//
//	@Summary	Redeem a reward
//	@Tags		ledger
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Reward ID"
//	@Param		request	body		ledger.RedeemRequest	true	"Displayed balance"
//	@Success	200		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	422		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/rewards/{id}/redeem [post]
func (h *LedgerHandler) Redeem(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req ledger.RedeemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Redeem(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
