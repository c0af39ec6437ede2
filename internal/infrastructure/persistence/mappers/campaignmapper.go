package mappers

import (
	"fmt"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
)

func CampaignToModel(c *campaign.Campaign) *models.CampaignModel {
	return &models.CampaignModel{
		ID:            c.ID(),
		OwnerUserID:   c.OwnerUserID(),
		Title:         c.Title(),
		GoalAmount:    c.Goal().Amount(),
		RaisedAmount:  c.Raised().Amount(),
		Currency:      c.Goal().Currency(),
		Status:        string(c.Status()),
		GoalReachedAt: c.GoalReachedAt(),
		EndsAt:        c.EndsAt(),
		Version:       c.Version(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func CampaignToDomain(model *models.CampaignModel) (*campaign.Campaign, error) {
	goal, err := vo.NewMoney(model.GoalAmount, model.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid goal on campaign %d: %w", model.ID, err)
	}
	raised, err := vo.NewMoney(model.RaisedAmount, model.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid raised amount on campaign %d: %w", model.ID, err)
	}
	status := campaign.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid campaign status: %s", model.Status)
	}

	return campaign.Reconstruct(campaign.ReconstructParams{
		ID:            model.ID,
		OwnerUserID:   model.OwnerUserID,
		Title:         model.Title,
		Goal:          goal,
		Raised:        raised,
		Status:        status,
		GoalReachedAt: model.GoalReachedAt,
		EndsAt:        model.EndsAt,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}), nil
}
