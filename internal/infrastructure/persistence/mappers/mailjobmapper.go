package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/fundhive/fundhive/internal/domain/notification"
	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
)

func MailJobToModel(j *notification.MailJob) *models.MailJobModel {
	return &models.MailJobModel{
		ID:              j.ID(),
		MailType:        string(j.MailType()),
		RecipientUserID: j.RecipientUserID(),
		Payload:         datatypes.JSONMap(j.Payload()),
		GroupKey:        j.Group(),
		ActiveGroup:     j.ActiveGroup(),
		Status:          string(j.Status()),
		Attempts:        j.Attempts(),
		NextAttemptAt:   j.NextAttemptAt(),
		LastError:       j.LastError(),
		DeliveredAt:     j.DeliveredAt(),
		CreatedAt:       j.CreatedAt(),
		UpdatedAt:       j.UpdatedAt(),
	}
}

func MailJobToDomain(model *models.MailJobModel) (*notification.MailJob, error) {
	mailType := vo.MailType(model.MailType)
	if !mailType.IsValid() {
		return nil, fmt.Errorf("invalid mail type: %s", model.MailType)
	}
	status := vo.JobStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid mail job status: %s", model.Status)
	}
	payload := map[string]any(model.Payload)
	if payload == nil {
		payload = map[string]any{}
	}

	return notification.ReconstructMailJob(notification.ReconstructMailJobParams{
		ID:              model.ID,
		MailType:        mailType,
		RecipientUserID: model.RecipientUserID,
		Payload:         payload,
		Group:           model.GroupKey,
		Status:          status,
		Attempts:        model.Attempts,
		NextAttemptAt:   model.NextAttemptAt,
		LastError:       model.LastError,
		CreatedAt:       model.CreatedAt,
		UpdatedAt:       model.UpdatedAt,
		DeliveredAt:     model.DeliveredAt,
	}), nil
}
