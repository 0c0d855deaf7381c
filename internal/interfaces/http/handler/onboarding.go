package handler

import (
	"context"

	onboardingapp "github.com/affiliate/backend/internal/application/onboarding"
	"github.com/affiliate/backend/internal/domain/onboarding"
	"github.com/affiliate/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// OnboardingService is the slice of the onboarding application service the
// HTTP layer drives
type OnboardingService interface {
	Open(ctx context.Context, userID string, req onboardingapp.OpenSessionRequest) (*onboardingapp.OpenSessionResponse, error)
	Get(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	Dismiss(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	Start(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	SubmitProfile(ctx context.Context, userID string, id uuid.UUID, form onboarding.ProfileForm) (*onboardingapp.SessionResponse, error)
	SkipProfile(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	SelectBrand(ctx context.Context, userID string, id uuid.UUID, req onboardingapp.SelectBrandRequest) (*onboardingapp.SessionResponse, error)
	DeselectBrand(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	ShowShareOptions(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	Share(ctx context.Context, userID string, id uuid.UUID, req onboardingapp.ShareRequest) (*onboardingapp.SessionResponse, error)
	SkipShare(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	CheckTransaction(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	AcknowledgeSale(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
	SkipSale(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)
}

var _ OnboardingService = (*onboardingapp.OnboardingService)(nil)

// OnboardingHandler handles the onboarding wizard endpoints
type OnboardingHandler struct {
	BaseHandler
	service OnboardingService
}

// NewOnboardingHandler creates a new OnboardingHandler
func NewOnboardingHandler(service OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{service: service}
}

// Open godoc
//
//	@Summary	Open or resume the caller's onboarding session
//	@Tags		onboarding
//	@Accept		json
//	@Produce	json
//	@Param		request	body		onboardingapp.OpenSessionRequest	false	"Host page user snapshot"
//	@Success	200		{object}	dto.Response
//	@Success	201		{object}	dto.Response
//	@Failure	401		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/onboarding/sessions [post]
func (h *OnboardingHandler) Open(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req onboardingapp.OpenSessionRequest
	if c.Request.ContentLength != 0 {
		if !h.bindJSON(c, &req) {
			return
		}
	}
	if req.User.Name == "" {
		req.User.Name = middleware.GetJWTName(c)
	}

	resp, err := h.service.Open(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if resp.Resumed {
		h.Success(c, resp)
		return
	}
	h.Created(c, resp)
}

// Get godoc
//
//	@Summary	Get the settled session snapshot
//	@Tags		onboarding
//	@Produce	json
//	@Param		id	path		string	true	"Session ID"
//	@Success	200	{object}	dto.Response
//	@Failure	404	{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/onboarding/sessions/{id} [get]
func (h *OnboardingHandler) Get(c *gin.Context) {
	h.run(c, h.service.Get)
}

// Dismiss godoc
//
//	@Summary	Close the wizard without completing onboarding
//	@Tags		onboarding
//	@Router		/onboarding/sessions/{id} [delete]
func (h *OnboardingHandler) Dismiss(c *gin.Context) {
	h.run(c, h.service.Dismiss)
}

// Start completes the welcome step
func (h *OnboardingHandler) Start(c *gin.Context) {
	h.run(c, h.service.Start)
}

// SubmitProfile godoc
//
//	@Summary	Save the affiliate profile and complete step 2
//	@Tags		onboarding
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string					true	"Session ID"
//	@Param		request	body		onboarding.ProfileForm	true	"Profile form"
//	@Success	200		{object}	dto.Response
//	@Failure	400		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	502		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/onboarding/sessions/{id}/profile [post]
func (h *OnboardingHandler) SubmitProfile(c *gin.Context) {
	var form onboarding.ProfileForm
	h.runWithBody(c, &form, func(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error) {
		return h.service.SubmitProfile(ctx, userID, id, form)
	})
}

// SkipProfile skips step 2
func (h *OnboardingHandler) SkipProfile(c *gin.Context) {
	h.run(c, h.service.SkipProfile)
}

// SelectBrand picks the brand to share
func (h *OnboardingHandler) SelectBrand(c *gin.Context) {
	var req onboardingapp.SelectBrandRequest
	h.runWithBody(c, &req, func(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error) {
		return h.service.SelectBrand(ctx, userID, id, req)
	})
}

// DeselectBrand returns to the brand list
func (h *OnboardingHandler) DeselectBrand(c *gin.Context) {
	h.run(c, h.service.DeselectBrand)
}

// ShowShareOptions reveals the social share buttons
func (h *OnboardingHandler) ShowShareOptions(c *gin.Context) {
	h.run(c, h.service.ShowShareOptions)
}

// Share godoc
//
//	@Summary	Share the selected brand's link and complete the share mission
//	@Tags		onboarding
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string						true	"Session ID"
//	@Param		request	body		onboardingapp.ShareRequest	true	"Share channel"
//	@Success	200		{object}	dto.Response
//	@Failure	409		{object}	dto.Response
//	@Failure	502		{object}	dto.Response
//	@Security	BearerAuth
//	@Router		/onboarding/sessions/{id}/share [post]
func (h *OnboardingHandler) Share(c *gin.Context) {
	var req onboardingapp.ShareRequest
	h.runWithBody(c, &req, func(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error) {
		return h.service.Share(ctx, userID, id, req)
	})
}

// SkipShare skips step 3
func (h *OnboardingHandler) SkipShare(c *gin.Context) {
	h.run(c, h.service.SkipShare)
}

// CheckTransaction asks the platform whether the first sale has arrived
func (h *OnboardingHandler) CheckTransaction(c *gin.Context) {
	h.run(c, h.service.CheckTransaction)
}

// AcknowledgeSale finishes onboarding after a confirmed sale
func (h *OnboardingHandler) AcknowledgeSale(c *gin.Context) {
	h.run(c, h.service.AcknowledgeSale)
}

// SkipSale finishes onboarding without a sale
func (h *OnboardingHandler) SkipSale(c *gin.Context) {
	h.run(c, h.service.SkipSale)
}

type sessionAction func(ctx context.Context, userID string, id uuid.UUID) (*onboardingapp.SessionResponse, error)

func (h *OnboardingHandler) run(c *gin.Context, action sessionAction) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}

	resp, err := action(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

func (h *OnboardingHandler) runWithBody(c *gin.Context, body any, action sessionAction) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	id, ok := h.parseSessionID(c)
	if !ok {
		return
	}
	if !h.bindJSON(c, body) {
		return
	}

	resp, err := action(c.Request.Context(), userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
