package usecases

import (
	"context"
	"fmt"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const defaultExpiryBatch = 100

// EndExpiredCampaignsUseCase ends published campaigns whose end date has
// passed, emitting CampaignEnded for each.
type EndExpiredCampaignsUseCase struct {
	campaigns  campaign.Repository
	dispatcher EventDispatcher
	clock      biztime.Clock
	logger     logger.Interface
}

func NewEndExpiredCampaignsUseCase(
	campaigns campaign.Repository,
	dispatcher EventDispatcher,
	clock biztime.Clock,
	logger logger.Interface,
) *EndExpiredCampaignsUseCase {
	return &EndExpiredCampaignsUseCase{
		campaigns:  campaigns,
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger,
	}
}

func (uc *EndExpiredCampaignsUseCase) Execute(ctx context.Context) (int, error) {
	expired, err := uc.campaigns.ListExpired(ctx, uc.clock.Now(), defaultExpiryBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired campaigns: %w", err)
	}

	ended := 0
	for _, c := range expired {
		if err := c.End(); err != nil {
			uc.logger.Warnw("failed to end campaign", "campaign_id", c.ID(), "error", err)
			continue
		}
		if err := uc.campaigns.Update(ctx, c); err != nil {
			uc.logger.Errorw("failed to persist ended campaign", "campaign_id", c.ID(), "error", err)
			continue
		}
		dispatchAll(ctx, uc.dispatcher, uc.logger, c.PullEvents())
		ended++
	}
	return ended, nil
}
