package mappers

import (
	"github.com/fundhive/fundhive/internal/domain/activity"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
)

func ActivityToModel(r *activity.Record) *models.ActivityModel {
	return &models.ActivityModel{
		ID:         r.ID,
		Action:     string(r.Action),
		ObjectType: string(r.ObjectType),
		ObjectID:   r.ObjectID,
		CampaignID: r.CampaignID,
		UserID:     r.UserID,
		Message:    r.Message,
		OccurredAt: r.OccurredAt,
	}
}

func ActivityToDomain(model *models.ActivityModel) *activity.Record {
	return &activity.Record{
		ID:         model.ID,
		Action:     activity.Action(model.Action),
		ObjectType: activity.ObjectType(model.ObjectType),
		ObjectID:   model.ObjectID,
		CampaignID: model.CampaignID,
		UserID:     model.UserID,
		Message:    model.Message,
		OccurredAt: model.OccurredAt,
	}
}
