package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/interfaces/http/handlers"
	"github.com/fundhive/fundhive/internal/interfaces/http/middleware"
	"github.com/fundhive/fundhive/internal/shared/constants"
)

// DonationRouteConfig holds dependencies for donation and campaign routes.
type DonationRouteConfig struct {
	DonationHandler *handlers.DonationHandler
	CampaignHandler *handlers.CampaignHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// SetupDonationRoutes configures donation creation and campaign owner routes.
func SetupDonationRoutes(engine *gin.Engine, cfg *DonationRouteConfig) {
	api := engine.Group(constants.APIVersionPrefix)

	donations := api.Group("/donations")
	donations.Use(cfg.AuthMiddleware.OptionalAuth())
	{
		donations.POST("", cfg.DonationHandler.CreateDonation)
	}

	campaigns := api.Group("/campaigns/:id")
	campaigns.Use(cfg.AuthMiddleware.RequireAuth())
	{
		campaigns.PUT("/status", cfg.CampaignHandler.ChangeStatus)
		campaigns.POST("/updates", cfg.CampaignHandler.PublishUpdate)
	}
}
