package migration

import (
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists every table owned by this service.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.CampaignModel{},
		&models.DonationModel{},
		&models.TransitionLogModel{},
		&models.ActivityModel{},
		&models.MailJobModel{},
		&models.UserModel{},
	}
}
