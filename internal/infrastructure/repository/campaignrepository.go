package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/mappers"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
	"github.com/fundhive/fundhive/internal/shared/db"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	model := mappers.CampaignToModel(c)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create campaign: %w", err)
	}

	return c.SetID(model.ID)
}

func (r *CampaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	model := mappers.CampaignToModel(c)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.CampaignModel{}).
		Where("id = ? AND version = ?", model.ID, model.Version-1).
		Updates(map[string]interface{}{
			"title":           model.Title,
			"raised_amount":   model.RaisedAmount,
			"status":          model.Status,
			"goal_reached_at": model.GoalReachedAt,
			"ends_at":         model.EndsAt,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update campaign: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("campaign was modified concurrently", fmt.Sprintf("id=%d", model.ID))
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uint) (*campaign.Campaign, error) {
	var model models.CampaignModel

	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("campaign not found")
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}

	return mappers.CampaignToDomain(&model)
}

func (r *CampaignRepository) ListExpired(ctx context.Context, now time.Time, limit int) ([]*campaign.Campaign, error) {
	var rows []models.CampaignModel

	q := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND ends_at IS NOT NULL AND ends_at <= ?", string(campaign.StatusPublished), now).
		Order("ends_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list expired campaigns: %w", err)
	}

	out := make([]*campaign.Campaign, 0, len(rows))
	for i := range rows {
		c, err := mappers.CampaignToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
