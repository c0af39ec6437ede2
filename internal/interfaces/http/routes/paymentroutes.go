package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/interfaces/http/handlers"
	"github.com/fundhive/fundhive/internal/interfaces/http/middleware"
	"github.com/fundhive/fundhive/internal/shared/authorization"
	"github.com/fundhive/fundhive/internal/shared/constants"
)

// PaymentRouteConfig holds dependencies for payment routes.
type PaymentRouteConfig struct {
	PaymentHandler *handlers.PaymentHandler
	GatewayHandler *handlers.GatewayHandler
	AuthMiddleware *middleware.AuthMiddleware
	// WebhookLimiter is optional.
	WebhookLimiter *middleware.RateLimiter
}

// SetupPaymentRoutes configures gateway discovery, charge, status and webhook routes.
func SetupPaymentRoutes(engine *gin.Engine, cfg *PaymentRouteConfig) {
	api := engine.Group(constants.APIVersionPrefix)

	gateways := api.Group("/gateways")
	{
		gateways.GET("", cfg.GatewayHandler.ListGateways)
		gateways.GET("/:gateway", cfg.GatewayHandler.GetGateway)
	}

	admin := api.Group("/admin/gateways")
	admin.Use(cfg.AuthMiddleware.RequireAuth(), authorization.RequireAdmin())
	{
		admin.POST("/reload", cfg.GatewayHandler.ReloadGateways)
	}

	payments := api.Group("/payments/:gateway")
	{
		webhook := []gin.HandlerFunc{}
		if cfg.WebhookLimiter != nil {
			webhook = append(webhook, cfg.WebhookLimiter.Limit())
		}
		webhook = append(webhook, cfg.PaymentHandler.HandleWebhook)
		payments.POST("/webhook", webhook...)

		payments.POST("/charge", cfg.AuthMiddleware.OptionalAuth(), cfg.PaymentHandler.Charge)

		paymentsProtected := payments.Group("")
		paymentsProtected.Use(cfg.AuthMiddleware.RequireAuth())
		{
			paymentsProtected.GET("/transactions/:transaction_id", cfg.PaymentHandler.GetStatus)
		}
	}
}
