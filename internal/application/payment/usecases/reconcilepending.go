package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

const (
	defaultReconcileAfter = 30 * time.Minute
	defaultReconcileBatch = 100
)

// ReconcilePendingUseCase polls processors for donations that stayed
// pending longer than the configured age, in case a webhook was lost. The
// results go through the same transition path as webhooks.
type ReconcilePendingUseCase struct {
	donations    donation.Repository
	gateways     GatewayResolver
	transitioner *DonationTransitioner
	clock        biztime.Clock
	after        time.Duration
	batch        int
	logger       logger.Interface
}

func NewReconcilePendingUseCase(
	donations donation.Repository,
	gateways GatewayResolver,
	transitioner *DonationTransitioner,
	clock biztime.Clock,
	after time.Duration,
	batch int,
	logger logger.Interface,
) *ReconcilePendingUseCase {
	if after <= 0 {
		after = defaultReconcileAfter
	}
	if batch <= 0 {
		batch = defaultReconcileBatch
	}
	return &ReconcilePendingUseCase{
		donations:    donations,
		gateways:     gateways,
		transitioner: transitioner,
		clock:        clock,
		after:        after,
		batch:        batch,
		logger:       logger,
	}
}

// Execute returns the number of donations whose status changed.
func (uc *ReconcilePendingUseCase) Execute(ctx context.Context) (int, error) {
	cutoff := uc.clock.Now().Add(-uc.after)
	stale, err := uc.donations.ListPendingOlderThan(ctx, cutoff, uc.batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending donations: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	changed := 0
	for _, d := range stale {
		if ctx.Err() != nil {
			return changed, ctx.Err()
		}
		if d.TransactionID() == "" {
			continue
		}

		gw, err := uc.gateways.Resolve(d.Gateway())
		if err != nil {
			uc.logger.Debugw("skipping reconciliation, gateway unavailable",
				"donation_id", d.ID(), "gateway", d.Gateway(), "error", err)
			continue
		}

		status, err := gw.GetStatus(ctx, d.TransactionID())
		if err != nil {
			uc.logger.Warnw("status poll failed",
				"donation_id", d.ID(),
				"gateway", d.Gateway(),
				"transaction_id", d.TransactionID(),
				"error", err,
			)
			continue
		}
		if status.Status() == vo.PaymentStatusPending {
			continue
		}

		report := StatusReport{
			Gateway:       d.Gateway(),
			TransactionID: d.TransactionID(),
			OrderID:       d.OrderID(),
			EventType:     "reconcile." + status.Status().String(),
			Status:        status.Status(),
		}
		if status.Currency() != "" && status.Amount().IsPositive() {
			if m, err := vo.NewMoney(status.Amount(), status.Currency()); err == nil {
				report.Amount = &m
			}
		}

		outcome, err := uc.transitioner.Apply(ctx, report)
		if err != nil {
			uc.logger.Errorw("failed to reconcile donation", "donation_id", d.ID(), "error", err)
			continue
		}
		if outcome == OutcomeProcessed {
			changed++
		}
	}
	return changed, nil
}
