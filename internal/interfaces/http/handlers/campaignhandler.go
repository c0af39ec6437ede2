package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fundhive/fundhive/internal/application/campaign/usecases"
	"github.com/fundhive/fundhive/internal/domain/campaign"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/constants"
	"github.com/fundhive/fundhive/internal/shared/logger"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

type CampaignHandler struct {
	changeStatusUC  changeCampaignStatusUseCase
	publishUpdateUC publishUpdateUseCase
	logger          logger.Interface
}

func NewCampaignHandler(
	changeStatusUC changeCampaignStatusUseCase,
	publishUpdateUC publishUpdateUseCase,
	logger logger.Interface,
) *CampaignHandler {
	return &CampaignHandler{
		changeStatusUC:  changeStatusUC,
		publishUpdateUC: publishUpdateUC,
		logger:          logger,
	}
}

type ChangeCampaignStatusRequest struct {
	Status campaign.Status `json:"status" binding:"required"`
}

type CampaignResponse struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Goal     string `json:"goal"`
	Raised   string `json:"raised"`
	Currency string `json:"currency"`
}

func toCampaignResponse(c *campaign.Campaign) CampaignResponse {
	scale := vo.MinorUnitScale(c.Goal().Currency())
	return CampaignResponse{
		ID:       c.ID(),
		Title:    c.Title(),
		Status:   string(c.Status()),
		Goal:     c.Goal().Amount().StringFixed(scale),
		Raised:   c.Raised().Amount().StringFixed(scale),
		Currency: c.Goal().Currency(),
	}
}

// ChangeStatus publishes or ends a campaign owned by the caller. Admins may
// act on any campaign.
func (h *CampaignHandler) ChangeStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
		return
	}
	campaignID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req ChangeCampaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	updated, err := h.changeStatusUC.Execute(c.Request.Context(), usecases.ChangeCampaignStatusCommand{
		CampaignID:  campaignID,
		ActorUserID: userID,
		ActorRole:   currentUserRole(c),
		Status:      req.Status,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "campaign status updated", toCampaignResponse(updated))
}

// PublishUpdate posts an update to the campaign's backers.
func (h *CampaignHandler) PublishUpdate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
		return
	}
	campaignID, err := parseUintParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var cmd usecases.PublishUpdateCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	cmd.CampaignID = campaignID
	cmd.ActorUserID = userID
	cmd.ActorRole = currentUserRole(c)

	if err := h.publishUpdateUC.Execute(c.Request.Context(), cmd); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Debugw("campaign update accepted", "campaign_id", campaignID, "user_id", userID)
	utils.SuccessResponse(c, http.StatusAccepted, "update published", nil)
}
