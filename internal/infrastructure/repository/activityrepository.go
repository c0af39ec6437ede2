package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/domain/activity"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/mappers"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
	"github.com/fundhive/fundhive/internal/shared/db"
)

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, record *activity.Record) error {
	model := mappers.ActivityToModel(record)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}

	record.ID = model.ID
	return nil
}

func (r *ActivityRepository) ListByCampaign(ctx context.Context, campaignID uint, limit int) ([]*activity.Record, error) {
	q := db.GetTxFromContext(ctx, r.db).
		Where("campaign_id = ?", campaignID).
		Order("occurred_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return r.find(q)
}

func (r *ActivityRepository) ListByObject(ctx context.Context, objectType activity.ObjectType, objectID uint) ([]*activity.Record, error) {
	q := db.GetTxFromContext(ctx, r.db).
		Where("object_type = ? AND object_id = ?", string(objectType), objectID).
		Order("occurred_at ASC, id ASC")
	return r.find(q)
}

func (r *ActivityRepository) find(q *gorm.DB) ([]*activity.Record, error) {
	var rows []models.ActivityModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	out := make([]*activity.Record, 0, len(rows))
	for i := range rows {
		out = append(out, mappers.ActivityToDomain(&rows[i]))
	}
	return out, nil
}
