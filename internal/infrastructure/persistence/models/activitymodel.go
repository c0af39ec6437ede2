package models

import "time"

type ActivityModel struct {
	ID         uint      `gorm:"primaryKey"`
	Action     string    `gorm:"size:50;not null"`
	ObjectType string    `gorm:"size:20;not null;index:idx_activity_object"`
	ObjectID   uint      `gorm:"not null;index:idx_activity_object"`
	CampaignID uint      `gorm:"index"`
	UserID     uint      `gorm:"index"`
	Message    string    `gorm:"type:text"`
	OccurredAt time.Time `gorm:"index"`
}

func (ActivityModel) TableName() string {
	return "activities"
}
