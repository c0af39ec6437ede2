package usecases

import (
	"context"
	"errors"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type GetPaymentStatusUseCase struct {
	gateways GatewayResolver
	logger   logger.Interface
}

func NewGetPaymentStatusUseCase(gateways GatewayResolver, logger logger.Interface) *GetPaymentStatusUseCase {
	return &GetPaymentStatusUseCase{
		gateways: gateways,
		logger:   logger,
	}
}

func (uc *GetPaymentStatusUseCase) Execute(ctx context.Context, gatewayName, transactionID string) (*dto.PaymentStatus, error) {
	if transactionID == "" {
		return nil, apperrors.NewFieldValidationError("Invalid request", apperrors.FieldError{
			Field:   "transaction_id",
			Message: "transaction_id is required",
		})
	}

	gw, err := uc.gateways.Resolve(gatewayName)
	if err != nil {
		return nil, err
	}

	status, err := gw.GetStatus(ctx, transactionID)
	if err != nil {
		if errors.Is(err, paymentgateway.ErrUnsupported) {
			return nil, apperrors.NewBadRequestError("gateway does not support status queries", gatewayName)
		}
		uc.logger.Warnw("gateway status query failed",
			"gateway", gatewayName,
			"transaction_id", transactionID,
			"error", err,
		)
		return nil, err
	}
	return status, nil
}
