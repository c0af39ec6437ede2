package mappers

import (
	"fmt"

	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/infrastructure/persistence/models"
)

func DonationToModel(d *donation.Donation) *models.DonationModel {
	model := &models.DonationModel{
		ID:          d.ID(),
		OrderID:     d.OrderID(),
		Kind:        string(d.Kind()),
		CampaignID:  d.CampaignID(),
		UserID:      d.UserID(),
		Amount:      d.Amount().Amount(),
		Currency:    d.Amount().Currency(),
		Gateway:     d.Gateway(),
		IsOffline:   d.IsOffline(),
		HasReward:   d.HasReward(),
		Status:      string(d.Status()),
		CompletedAt: d.CompletedAt(),
		Version:     d.Version(),
		CreatedAt:   d.CreatedAt(),
		UpdatedAt:   d.UpdatedAt(),
	}
	if tx := d.TransactionID(); tx != "" {
		model.TransactionID = &tx
	}
	return model
}

func DonationToDomain(model *models.DonationModel) (*donation.Donation, error) {
	amount, err := vo.NewMoney(model.Amount, model.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid amount on donation %d: %w", model.ID, err)
	}
	kind := donation.Kind(model.Kind)
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid donation kind: %s", model.Kind)
	}
	status := donation.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid donation status: %s", model.Status)
	}

	var txID string
	if model.TransactionID != nil {
		txID = *model.TransactionID
	}

	return donation.Reconstruct(donation.ReconstructParams{
		ID:            model.ID,
		OrderID:       model.OrderID,
		Kind:          kind,
		CampaignID:    model.CampaignID,
		UserID:        model.UserID,
		Amount:        amount,
		Gateway:       model.Gateway,
		TransactionID: txID,
		IsOffline:     model.IsOffline,
		HasReward:     model.HasReward,
		Status:        status,
		CompletedAt:   model.CompletedAt,
		Version:       model.Version,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}), nil
}

func DonationsToDomain(rows []models.DonationModel) ([]*donation.Donation, error) {
	out := make([]*donation.Donation, 0, len(rows))
	for i := range rows {
		d, err := DonationToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func LedgerEntryToModel(e donation.LedgerEntry) *models.TransitionLogModel {
	return &models.TransitionLogModel{
		Gateway:       e.Gateway,
		TransactionID: e.TransactionID,
		ToStatus:      string(e.ToStatus),
		FromStatus:    string(e.FromStatus),
		DonationID:    e.DonationID,
		EventType:     e.EventType,
		RecordedAt:    e.RecordedAt,
	}
}
