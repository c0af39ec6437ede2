package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/fundhive/fundhive/internal/domain/notification"
	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/mappers"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
	"github.com/fundhive/fundhive/internal/shared/db"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
)

type MailJobRepository struct {
	db *gorm.DB
}

func NewMailJobRepository(db *gorm.DB) *MailJobRepository {
	return &MailJobRepository{db: db}
}

// Create inserts a queued job. The unique active_group column turns a second
// queued job for the same group into ErrGroupQueued.
func (r *MailJobRepository) Create(ctx context.Context, job *notification.MailJob) error {
	if err := db.GetTxFromContext(ctx, r.db).Create(mappers.MailJobToModel(job)).Error; err != nil {
		if apperrors.IsDuplicateError(err) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return notification.ErrGroupQueued
		}
		return fmt.Errorf("failed to create mail job: %w", err)
	}
	return nil
}

func (r *MailJobRepository) Update(ctx context.Context, job *notification.MailJob) error {
	model := mappers.MailJobToModel(job)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.MailJobModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"active_group":    model.ActiveGroup,
			"status":          model.Status,
			"attempts":        model.Attempts,
			"next_attempt_at": model.NextAttemptAt,
			"last_error":      model.LastError,
			"delivered_at":    model.DeliveredAt,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update mail job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("mail job not found", model.ID)
	}
	return nil
}

func (r *MailJobRepository) GetByID(ctx context.Context, id string) (*notification.MailJob, error) {
	var model models.MailJobModel

	if err := db.GetTxFromContext(ctx, r.db).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("mail job not found", id)
		}
		return nil, fmt.Errorf("failed to get mail job: %w", err)
	}

	return mappers.MailJobToDomain(&model)
}

func (r *MailJobRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*notification.MailJob, error) {
	var rows []models.MailJobModel

	q := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND next_attempt_at <= ?", string(vo.JobStatusQueued), now).
		Order("next_attempt_at ASC, created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list due mail jobs: %w", err)
	}

	out := make([]*notification.MailJob, 0, len(rows))
	for i := range rows {
		job, err := mappers.MailJobToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}
