package usecases

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/id"
	"github.com/fundhive/fundhive/internal/shared/logger"
	"github.com/fundhive/fundhive/internal/shared/utils"
)

const orderIDPrefix = "D-"

// GatewayCatalog resolves gateways and exposes their manifests.
type GatewayCatalog interface {
	GatewayResolver
	Manifest(name string) (paymentgateway.Manifest, bool)
}

type CreateDonationCommand struct {
	CampaignID uint            `json:"campaign_id" validate:"required"`
	UserID     uint            `json:"-"`
	Kind       donation.Kind   `json:"kind" validate:"required,oneof=donation pledge"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency" validate:"required,len=3"`
	Gateway    string          `json:"gateway" validate:"required,max=64"`
	HasReward  bool            `json:"has_reward"`
}

// CreateDonationUseCase opens a pending donation or pledge against a
// published campaign and announces it with DonationCreated or PledgeCreated.
type CreateDonationUseCase struct {
	donations  donation.Repository
	campaigns  campaign.Repository
	gateways   GatewayCatalog
	dispatcher EventDispatcher
	logger     logger.Interface
}

func NewCreateDonationUseCase(
	donations donation.Repository,
	campaigns campaign.Repository,
	gateways GatewayCatalog,
	dispatcher EventDispatcher,
	logger logger.Interface,
) *CreateDonationUseCase {
	return &CreateDonationUseCase{
		donations:  donations,
		campaigns:  campaigns,
		gateways:   gateways,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func (uc *CreateDonationUseCase) Execute(ctx context.Context, cmd CreateDonationCommand) (*donation.Donation, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	amount, err := vo.NewMoney(cmd.Amount, cmd.Currency)
	if err != nil || !amount.IsPositive() {
		return nil, apperrors.NewFieldValidationError("Invalid donation", apperrors.FieldError{
			Field:   "amount",
			Message: "amount must be a positive amount in a valid currency",
		})
	}

	if _, err := uc.gateways.Resolve(cmd.Gateway); err != nil {
		return nil, err
	}
	manifest, _ := uc.gateways.Manifest(cmd.Gateway)

	c, err := uc.campaigns.GetByID(ctx, cmd.CampaignID)
	if err != nil {
		return nil, err
	}
	if c.Status() != campaign.StatusPublished {
		return nil, apperrors.NewConflictError("campaign is not accepting donations", string(c.Status()))
	}
	if c.Goal().Currency() != amount.Currency() {
		return nil, apperrors.NewFieldValidationError("Invalid donation", apperrors.FieldError{
			Field:   "currency",
			Message: fmt.Sprintf("currency must be %s", c.Goal().Currency()),
		})
	}

	suffix, err := id.Generate(12)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order id: %w", err)
	}

	d, err := donation.NewDonation(donation.NewParams{
		OrderID:    orderIDPrefix + suffix,
		Kind:       cmd.Kind,
		CampaignID: cmd.CampaignID,
		UserID:     cmd.UserID,
		Amount:     amount,
		Gateway:    cmd.Gateway,
		IsOffline:  manifest.Type == vo.GatewayTypeManual,
		HasReward:  cmd.HasReward,
	})
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid donation", err.Error())
	}

	if err := uc.donations.Create(ctx, d); err != nil {
		uc.logger.Errorw("failed to create donation", "campaign_id", cmd.CampaignID, "error", err)
		return nil, fmt.Errorf("failed to create donation: %w", err)
	}

	created := d.CreatedEvent()
	if err := uc.dispatcher.Dispatch(ctx, created); err != nil {
		uc.logger.Errorw("event listeners failed",
			"event_type", created.EventType(),
			"donation_id", d.ID(),
			"error", err,
		)
	}

	uc.logger.Infow("donation created",
		"donation_id", d.ID(),
		"order_id", d.OrderID(),
		"kind", d.Kind(),
		"gateway", d.Gateway(),
	)
	return d, nil
}
