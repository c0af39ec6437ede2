package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CampaignModel struct {
	ID            uint            `gorm:"primaryKey"`
	OwnerUserID   uint            `gorm:"index;not null"`
	Title         string          `gorm:"size:200;not null"`
	GoalAmount    decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	RaisedAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency      string          `gorm:"size:3;not null"`
	Status        string          `gorm:"size:20;not null;index:idx_campaign_status_ends"`
	GoalReachedAt *time.Time
	EndsAt        *time.Time `gorm:"index:idx_campaign_status_ends"`
	Version       int        `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (CampaignModel) TableName() string {
	return "campaigns"
}
