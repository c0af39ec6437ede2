package usecases

import (
	"context"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/shared/authorization"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

type PublishUpdateCommand struct {
	CampaignID  uint                   `json:"-"`
	ActorUserID uint                   `json:"-"`
	ActorRole   authorization.UserRole `json:"-"`
	Title       string                 `json:"title" validate:"required,max=200"`
	Body        string                 `json:"body" validate:"required,max=20000"`
}

// PublishUpdateUseCase posts an update that every backer is mailed about.
type PublishUpdateUseCase struct {
	campaigns  campaign.Repository
	dispatcher EventDispatcher
	logger     logger.Interface
}

func NewPublishUpdateUseCase(
	campaigns campaign.Repository,
	dispatcher EventDispatcher,
	logger logger.Interface,
) *PublishUpdateUseCase {
	return &PublishUpdateUseCase{
		campaigns:  campaigns,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *PublishUpdateUseCase) Execute(ctx context.Context, cmd PublishUpdateCommand) error {
	if err := utils.ValidateStruct(cmd); err != nil {
		return err
	}

	c, err := uc.campaigns.GetByID(ctx, cmd.CampaignID)
	if err != nil {
		return err
	}
	if !authorization.CanAccessResourceByOwnerID(cmd.ActorUserID, cmd.ActorRole, c.OwnerUserID()) {
		return apperrors.NewForbiddenError("only the campaign owner can post updates")
	}
	if err := c.PublishUpdate(cmd.Title, cmd.Body); err != nil {
		return apperrors.NewConflictError("cannot publish update", err.Error())
	}

	dispatchAll(ctx, uc.dispatcher, uc.logger, c.PullEvents())
	uc.logger.Infow("campaign update published", "campaign_id", c.ID())
	return nil
}
