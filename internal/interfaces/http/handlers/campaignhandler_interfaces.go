package handlers

import (
	"context"

	"github.com/fundhive/fundhive/internal/application/campaign/usecases"
	"github.com/fundhive/fundhive/internal/domain/campaign"
)

// Use case interfaces for CampaignHandler

type changeCampaignStatusUseCase interface {
	Execute(ctx context.Context, cmd usecases.ChangeCampaignStatusCommand) (*campaign.Campaign, error)
}

type publishUpdateUseCase interface {
	Execute(ctx context.Context, cmd usecases.PublishUpdateCommand) error
}
