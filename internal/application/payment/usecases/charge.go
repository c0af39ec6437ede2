package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	"github.com/fundhive/fundhive/internal/domain/donation"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type ChargeCommand struct {
	Gateway string
	Payment dto.PaymentPayloadParams
}

// ChargeUseCase charges a pending donation through the gateway it was
// created for. The gateway is always named by the caller.
type ChargeUseCase struct {
	gateways  GatewayResolver
	donations donation.Repository
	logger    logger.Interface
}

func NewChargeUseCase(
	gateways GatewayResolver,
	donations donation.Repository,
	logger logger.Interface,
) *ChargeUseCase {
	return &ChargeUseCase{
		gateways:  gateways,
		donations: donations,
		logger:    logger,
	}
}

func (uc *ChargeUseCase) Execute(ctx context.Context, cmd ChargeCommand) (*dto.PaymentResponse, error) {
	gw, err := uc.gateways.Resolve(cmd.Gateway)
	if err != nil {
		return nil, err
	}

	params := cmd.Payment
	params.RequiresRedirect = paymentgateway.RequiresRedirect(gw)
	payload, err := dto.NewPaymentPayload(params)
	if err != nil {
		return nil, err
	}

	d, err := uc.donations.GetByOrderID(ctx, payload.OrderID())
	if err != nil {
		return nil, err
	}
	if d.Gateway() != cmd.Gateway {
		return nil, apperrors.NewValidationError("donation belongs to another gateway", d.Gateway())
	}
	if d.Status() != donation.StatusPending {
		return nil, apperrors.NewConflictError("donation is not pending", string(d.Status()))
	}
	if !payload.Money().Equals(d.Amount()) {
		return nil, apperrors.NewFieldValidationError("Invalid payment payload", apperrors.FieldError{
			Field:   "amount",
			Message: fmt.Sprintf("amount must equal the donation amount %s", d.Amount()),
		})
	}

	resp, err := gw.Charge(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentgateway.ErrUnsupported) {
			return nil, apperrors.NewBadRequestError("gateway does not support charges", cmd.Gateway)
		}
		uc.logger.Errorw("gateway charge failed",
			"gateway", cmd.Gateway,
			"order_id", payload.OrderID(),
			"error", err,
		)
		return nil, err
	}

	if txID := resp.TransactionID(); txID != "" && d.TransactionID() == "" {
		if err := uc.donations.SetTransactionID(ctx, d.ID(), txID); err != nil {
			// The charge went through; the webhook still finds the donation by order id.
			uc.logger.Errorw("failed to store transaction id",
				"donation_id", d.ID(),
				"transaction_id", txID,
				"error", err,
			)
		}
	}

	uc.logger.Infow("donation charged",
		"gateway", cmd.Gateway,
		"order_id", payload.OrderID(),
		"transaction_id", resp.TransactionID(),
		"redirect", resp.IsRedirect(),
	)
	return resp, nil
}
