package handler

import (
	"context"

	"github.com/affiliate/backend/internal/application/dashboard"
	"github.com/affiliate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// DashboardService builds the affiliate home screen
type DashboardService interface {
	Summary(ctx context.Context, userID string, q dashboard.SummaryQuery) (*dashboard.SummaryResponse, error)
}

var _ DashboardService = (*dashboard.DashboardService)(nil)

// DashboardHandler serves the dashboard summary
type DashboardHandler struct {
	BaseHandler
	service DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
//
//	@Summary	Dashboard greeting, featured brands, rewards and missions
//	@Tags		dashboard
//	@Produce	json
//	@Param		name	query		string	false	"Display name"
//	@Param		points	query		int		false	"Displayed points balance"
//	@Success	200		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var q dashboard.SummaryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	if q.Name == "" {
		q.Name = middleware.GetJWTName(c)
	}

	resp, err := h.service.Summary(c.Request.Context(), userID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
