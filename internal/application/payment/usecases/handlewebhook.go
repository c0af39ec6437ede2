package usecases

import (
	"context"
	"errors"
	"net/http"

	"github.com/fundhive/fundhive/internal/application/payment/dto"
	"github.com/fundhive/fundhive/internal/application/payment/paymentgateway"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

type HandleWebhookCommand struct {
	Gateway string
	Body    []byte
	Headers http.Header
}

type HandleWebhookResult struct {
	Outcome       Outcome
	EventType     string
	TransactionID string
}

// HandleWebhookUseCase normalizes a delivery and applies it to the matching
// donation. Re-deliveries and unknown events are acknowledged without effect.
type HandleWebhookUseCase struct {
	normalizer   *WebhookNormalizer
	transitioner *DonationTransitioner
	logger       logger.Interface
}

func NewHandleWebhookUseCase(
	normalizer *WebhookNormalizer,
	transitioner *DonationTransitioner,
	logger logger.Interface,
) *HandleWebhookUseCase {
	return &HandleWebhookUseCase{
		normalizer:   normalizer,
		transitioner: transitioner,
		logger:       logger,
	}
}

func (uc *HandleWebhookUseCase) Execute(ctx context.Context, cmd HandleWebhookCommand) (*HandleWebhookResult, error) {
	webhook, err := uc.normalizer.Normalize(ctx, cmd.Gateway, cmd.Body, cmd.Headers)
	if errors.Is(err, paymentgateway.ErrUnrecognizedEvent) {
		return &HandleWebhookResult{Outcome: OutcomeIgnored}, nil
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Debugw("webhook received",
		"gateway", webhook.PaymentGateway(),
		"type", webhook.Type(),
		"status", webhook.Status(),
		"transaction_id", webhook.TransactionID(),
	)

	outcome, err := uc.transitioner.Apply(ctx, reportFromWebhook(webhook))
	if err != nil {
		uc.logger.Errorw("failed to apply webhook",
			"gateway", webhook.PaymentGateway(),
			"transaction_id", webhook.TransactionID(),
			"error", err,
		)
		return nil, err
	}

	return &HandleWebhookResult{
		Outcome:       outcome,
		EventType:     webhook.Type(),
		TransactionID: webhook.TransactionID(),
	}, nil
}

func reportFromWebhook(w *dto.WebhookResponse) StatusReport {
	report := StatusReport{
		Gateway:       w.PaymentGateway(),
		TransactionID: w.TransactionID(),
		OrderID:       w.OrderID(),
		EventType:     w.Type(),
		Status:        w.Status(),
	}
	if w.HasAmount() {
		if m, err := vo.NewMoney(w.Amount(), w.Currency()); err == nil {
			report.Amount = &m
		}
	}
	return report
}
