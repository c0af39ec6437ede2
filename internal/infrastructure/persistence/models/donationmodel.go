package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DonationModel struct {
	ID            uint            `gorm:"primaryKey"`
	OrderID       string          `gorm:"uniqueIndex;size:64;not null"`
	Kind          string          `gorm:"size:20;not null"`
	CampaignID    uint            `gorm:"index;not null"`
	UserID        uint            `gorm:"index;not null;default:0"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency      string          `gorm:"size:3;not null"`
	Gateway       string          `gorm:"size:64;not null;index:idx_donation_gateway_tx"`
	TransactionID *string         `gorm:"size:128;index:idx_donation_gateway_tx"`
	IsOffline     bool            `gorm:"not null;default:false"`
	HasReward     bool            `gorm:"not null;default:false"`
	Status        string          `gorm:"size:20;not null;index"`
	CompletedAt   *time.Time
	Version       int `gorm:"not null;default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (DonationModel) TableName() string {
	return "donations"
}

// TransitionLogModel is the idempotency ledger. One row per committed
// (gateway, transaction id, status).
type TransitionLogModel struct {
	ID            uint   `gorm:"primaryKey"`
	Gateway       string `gorm:"size:64;not null;uniqueIndex:uk_transition_log"`
	TransactionID string `gorm:"size:128;not null;uniqueIndex:uk_transition_log"`
	ToStatus      string `gorm:"size:20;not null;uniqueIndex:uk_transition_log"`
	FromStatus    string `gorm:"size:20;not null"`
	DonationID    uint   `gorm:"index;not null"`
	EventType     string `gorm:"size:64"`
	RecordedAt    time.Time
}

func (TransitionLogModel) TableName() string {
	return "donation_transition_logs"
}
