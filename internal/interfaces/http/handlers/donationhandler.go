package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/application/payment/usecases"
	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/logger"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

type DonationHandler struct {
	createDonationUC createDonationUseCase
	logger           logger.Interface
}

func NewDonationHandler(createDonationUC createDonationUseCase, logger logger.Interface) *DonationHandler {
	return &DonationHandler{
		createDonationUC: createDonationUC,
		logger:           logger,
	}
}

type DonationResponse struct {
	OrderID    string    `json:"order_id"`
	Kind       string    `json:"kind"`
	CampaignID uint      `json:"campaign_id"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	Gateway    string    `json:"gateway"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toDonationResponse(d *donation.Donation) DonationResponse {
	return DonationResponse{
		OrderID:    d.OrderID(),
		Kind:       string(d.Kind()),
		CampaignID: d.CampaignID(),
		Amount:     d.Amount().Amount().StringFixed(vo.MinorUnitScale(d.Amount().Currency())),
		Currency:   d.Amount().Currency(),
		Gateway:    d.Gateway(),
		Status:     string(d.Status()),
		CreatedAt:  d.CreatedAt(),
	}
}

// CreateDonation opens a pending donation or pledge. Guests may donate; the
// caller is attached when a valid token is present.
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	var cmd usecases.CreateDonationCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("failed to bind donation request", "error", err)
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if userID, ok := currentUserID(c); ok {
		cmd.UserID = userID
	}

	d, err := h.createDonationUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "donation created", toDonationResponse(d))
}
