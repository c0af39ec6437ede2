package usecases

import (
	"context"
	"errors"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/shared/authorization"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type ChangeCampaignStatusCommand struct {
	CampaignID  uint
	ActorUserID uint
	ActorRole   authorization.UserRole
	Status      campaign.Status
}

// ChangeCampaignStatusUseCase publishes or ends a campaign on behalf of its
// owner or an admin.
type ChangeCampaignStatusUseCase struct {
	campaigns  campaign.Repository
	dispatcher EventDispatcher
	logger     logger.Interface
}

func NewChangeCampaignStatusUseCase(
	campaigns campaign.Repository,
	dispatcher EventDispatcher,
	logger logger.Interface,
) *ChangeCampaignStatusUseCase {
	return &ChangeCampaignStatusUseCase{
		campaigns:  campaigns,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *ChangeCampaignStatusUseCase) Execute(ctx context.Context, cmd ChangeCampaignStatusCommand) (*campaign.Campaign, error) {
	if !cmd.Status.IsValid() {
		return nil, apperrors.NewFieldValidationError("Invalid request", apperrors.FieldError{
			Field:   "status",
			Message: "status must be one of [draft published ended]",
		})
	}

	c, err := uc.campaigns.GetByID(ctx, cmd.CampaignID)
	if err != nil {
		return nil, err
	}
	if !authorization.CanAccessResourceByOwnerID(cmd.ActorUserID, cmd.ActorRole, c.OwnerUserID()) {
		return nil, apperrors.NewForbiddenError("only the campaign owner can change its status")
	}

	if err := c.ChangeStatus(cmd.Status); err != nil {
		if errors.Is(err, campaign.ErrInvalidStatusChange) {
			return nil, apperrors.NewConflictError("invalid campaign status change", err.Error())
		}
		return nil, err
	}
	if err := uc.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}

	dispatchAll(ctx, uc.dispatcher, uc.logger, c.PullEvents())
	uc.logger.Infow("campaign status changed", "campaign_id", c.ID(), "status", c.Status())
	return c, nil
}

func dispatchAll(ctx context.Context, dispatcher EventDispatcher, log logger.Interface, evts []events.DomainEvent) {
	for _, ev := range evts {
		if err := dispatcher.Dispatch(ctx, ev); err != nil {
			log.Errorw("event listeners failed",
				"event_type", ev.EventType(),
				"aggregate_id", ev.AggregateID(),
				"error", err,
			)
		}
	}
}
