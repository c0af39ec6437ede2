package http

import (
	"github.com/fundhive/fundhive/internal/interfaces/http/middleware"
	"github.com/fundhive/fundhive/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestID())
	c.engine.Use(middleware.Logger(c.log.Named("http")))
	c.engine.Use(middleware.Recovery(c.log.Named("http")))
	c.engine.Use(middleware.SecurityHeaders())
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))

	c.engine.GET("/health", c.handlers.health.Health)

	routes.SetupPaymentRoutes(c.engine, &routes.PaymentRouteConfig{
		PaymentHandler: c.handlers.payment,
		GatewayHandler: c.handlers.gateway,
		AuthMiddleware: c.authMiddleware,
		WebhookLimiter: c.webhookLimiter,
	})

	routes.SetupDonationRoutes(c.engine, &routes.DonationRouteConfig{
		DonationHandler: c.handlers.donation,
		CampaignHandler: c.handlers.campaign,
		AuthMiddleware:  c.authMiddleware,
	})
}
