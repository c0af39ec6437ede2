package models

import (
	"time"

	"gorm.io/datatypes"
)

// MailJobModel stores deferred mails. ActiveGroup holds the group key while
// the job is queued and NULL afterwards, so the unique index allows only one
// queued job per group.
type MailJobModel struct {
	ID              string            `gorm:"primaryKey;size:36"`
	MailType        string            `gorm:"size:50;not null"`
	RecipientUserID uint              `gorm:"not null;default:0"`
	Payload         datatypes.JSONMap `gorm:"type:json"`
	GroupKey        string            `gorm:"size:191;not null;index"`
	ActiveGroup     *string           `gorm:"size:191;uniqueIndex"`
	Status          string            `gorm:"size:20;not null;index:idx_mail_job_due"`
	Attempts        int               `gorm:"not null;default:0"`
	NextAttemptAt   time.Time         `gorm:"index:idx_mail_job_due"`
	LastError       string            `gorm:"type:text"`
	DeliveredAt     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (MailJobModel) TableName() string {
	return "mail_jobs"
}
