package router

import (
	"github.com/affiliate/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// OnboardingRoutes mounts the wizard endpoints under /onboarding/sessions
func OnboardingRoutes(h *handler.OnboardingHandler) RouteRegistrar {
	return RoutesFunc(func(api *gin.RouterGroup) {
		sessions := api.Group("/onboarding/sessions")
		sessions.POST("", h.Open)

		s := sessions.Group("/:id")
		s.GET("", h.Get)
		s.DELETE("", h.Dismiss)
		s.POST("/start", h.Start)
		s.POST("/profile", h.SubmitProfile)
		s.POST("/profile/skip", h.SkipProfile)
		s.POST("/share/brand", h.SelectBrand)
		s.DELETE("/share/brand", h.DeselectBrand)
		s.POST("/share/options", h.ShowShareOptions)
		s.POST("/share", h.Share)
		s.POST("/share/skip", h.SkipShare)
		s.POST("/sale/check", h.CheckTransaction)
		s.POST("/sale/acknowledge", h.AcknowledgeSale)
		s.POST("/sale/skip", h.SkipSale)
	})
}

// LedgerRoutes mounts link generation and reward redemption
func LedgerRoutes(h *handler.LedgerHandler) RouteRegistrar {
	return RoutesFunc(func(api *gin.RouterGroup) {
		api.POST("/affiliate-links", h.GenerateLink)
		api.GET("/rewards", h.ListRewards)
		api.POST("/rewards/:id/redeem", h.Redeem)
	})
}

// DashboardRoutes mounts the dashboard summary
func DashboardRoutes(h *handler.DashboardHandler) RouteRegistrar {
	return RoutesFunc(func(api *gin.RouterGroup) {
		api.GET("/dashboard", h.Summary)
	})
}
