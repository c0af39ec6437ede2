package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/domain/donation"
	vo "github.com/fundhive/fundhive/internal/domain/payment/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/shared/biztime"
	"github.com/fundhive/fundhive/internal/shared/db"
	apperrors "github.com/fundhive/fundhive/internal/shared/errors"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

// Outcome is the result of applying a processor status to a donation.
type Outcome string

const (
	OutcomeProcessed        Outcome = "processed"
	OutcomeAlreadyProcessed Outcome = "already_processed"
	OutcomeIgnored          Outcome = "ignored"
)

// errDuplicateDelivery rolls back the unit of work when the ledger already
// holds the transition.
var errDuplicateDelivery = errors.New("duplicate delivery")

// StatusReport is a processor's view of one transaction, from a webhook or
// a status poll.
type StatusReport struct {
	Gateway       string
	TransactionID string
	OrderID       string
	EventType     string
	Status        vo.PaymentStatus
	// Amount is compared with the donation on success when set.
	Amount *vo.Money
}

// DonationTransitioner applies processor status reports to donations. Each
// report is applied at most once per (transaction, status): a per-transaction
// lock, a unique ledger row and an optimistic version check guard the commit.
// Events are dispatched only after the commit succeeds.
type DonationTransitioner struct {
	donations  donation.Repository
	campaigns  campaign.Repository
	ledger     donation.TransitionLedger
	txManager  db.Transactor
	locker     TransactionLocker
	dispatcher EventDispatcher
	logger     logger.Interface
}

func NewDonationTransitioner(
	donations donation.Repository,
	campaigns campaign.Repository,
	ledger donation.TransitionLedger,
	txManager db.Transactor,
	locker TransactionLocker,
	dispatcher EventDispatcher,
	logger logger.Interface,
) *DonationTransitioner {
	return &DonationTransitioner{
		donations:  donations,
		campaigns:  campaigns,
		ledger:     ledger,
		txManager:  txManager,
		locker:     locker,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

func lockKey(gateway, transactionID string) string {
	return "payment:tx:" + gateway + ":" + transactionID
}

// Apply commits the transition implied by report, if any.
func (t *DonationTransitioner) Apply(ctx context.Context, report StatusReport) (Outcome, error) {
	unlock, err := t.locker.Lock(ctx, lockKey(report.Gateway, report.TransactionID))
	if err != nil {
		return "", fmt.Errorf("failed to lock transaction %s: %w", report.TransactionID, err)
	}
	defer unlock()

	var (
		outcome = OutcomeProcessed
		pending []events.DomainEvent
	)

	err = t.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		d, err := t.findDonation(txCtx, report)
		if err != nil {
			if apperrors.IsNotFoundError(err) {
				t.logger.Infow("no donation matches payment report",
					"gateway", report.Gateway,
					"transaction_id", report.TransactionID,
					"order_id", report.OrderID,
				)
				outcome = OutcomeIgnored
				return nil
			}
			return err
		}

		target, ok := targetStatus(d, report)
		if !ok {
			outcome = OutcomeIgnored
			return nil
		}
		if report.Status == vo.PaymentStatusSuccess && target == donation.StatusFailed {
			t.logger.Errorw("payment amount/currency mismatch, failing donation",
				"donation_id", d.ID(),
				"expected", d.Amount().String(),
				"reported", report.Amount.String(),
				"transaction_id", report.TransactionID,
			)
		}

		if d.Status() == target || !donation.CanTransition(d.Kind(), d.Status(), target) {
			outcome = t.classifyNoop(d, target, report)
			return nil
		}

		err = t.ledger.Append(txCtx, donation.LedgerEntry{
			Gateway:       report.Gateway,
			TransactionID: report.TransactionID,
			DonationID:    d.ID(),
			FromStatus:    d.Status(),
			ToStatus:      target,
			EventType:     report.EventType,
			RecordedAt:    biztime.NowUTC(),
		})
		if err != nil {
			if errors.Is(err, donation.ErrAlreadyRecorded) {
				return errDuplicateDelivery
			}
			return fmt.Errorf("failed to append transition ledger: %w", err)
		}

		d.AttachTransaction(report.TransactionID)
		tr, err := d.TransitionTo(target)
		if err != nil {
			return err
		}
		if err := t.donations.Update(txCtx, d); err != nil {
			return err
		}

		campaignEvents, err := t.applyToCampaign(txCtx, d, tr)
		if err != nil {
			return err
		}

		pending = append(d.PullEvents(), campaignEvents...)
		t.logger.Infow("donation status changed",
			"donation_id", d.ID(),
			"order_id", d.OrderID(),
			"gateway", report.Gateway,
			"transaction_id", report.TransactionID,
			"from", tr.From,
			"to", tr.To,
		)
		return nil
	})
	if errors.Is(err, errDuplicateDelivery) {
		t.logger.Infow("duplicate payment delivery ignored",
			"gateway", report.Gateway,
			"transaction_id", report.TransactionID,
			"status", report.Status,
		)
		return OutcomeAlreadyProcessed, nil
	}
	if err != nil {
		return "", err
	}

	t.dispatch(ctx, pending)
	return outcome, nil
}

func (t *DonationTransitioner) findDonation(ctx context.Context, report StatusReport) (*donation.Donation, error) {
	d, err := t.donations.GetByTransactionID(ctx, report.Gateway, report.TransactionID)
	if err == nil {
		return d, nil
	}
	if !apperrors.IsNotFoundError(err) || report.OrderID == "" {
		return nil, err
	}

	d, err = t.donations.GetByOrderID(ctx, report.OrderID)
	if err != nil {
		return nil, err
	}
	if d.Gateway() != report.Gateway {
		t.logger.Warnw("payment report gateway does not match donation",
			"order_id", report.OrderID,
			"donation_gateway", d.Gateway(),
			"report_gateway", report.Gateway,
		)
		return nil, apperrors.NewNotFoundError("donation not found", report.OrderID)
	}
	if d.TransactionID() != "" && d.TransactionID() != report.TransactionID {
		t.logger.Warnw("payment report transaction does not match donation",
			"order_id", report.OrderID,
			"donation_transaction_id", d.TransactionID(),
			"report_transaction_id", report.TransactionID,
		)
		return nil, apperrors.NewNotFoundError("donation not found", report.OrderID)
	}
	return d, nil
}

// targetStatus maps a processor report onto the donation state machine.
// Pending reports never move a donation.
func targetStatus(d *donation.Donation, report StatusReport) (donation.Status, bool) {
	eventType := strings.ToLower(report.EventType)
	if strings.Contains(eventType, "cancel") {
		return donation.StatusCancelled, true
	}

	switch report.Status {
	case vo.PaymentStatusSuccess:
		if report.Amount != nil && !report.Amount.Equals(d.Amount()) {
			return donation.StatusFailed, true
		}
		if d.IsPledge() && d.HasReward() &&
			(strings.HasSuffix(eventType, ".authorized") || eventType == "pledge.backed") {
			return donation.StatusBacked, true
		}
		return donation.StatusCompleted, true
	case vo.PaymentStatusFailed:
		return donation.StatusFailed, true
	case vo.PaymentStatusRefunded:
		return donation.StatusRefunded, true
	default:
		return "", false
	}
}

// classifyNoop tells a re-delivery on a settled donation apart from a report
// that simply does not apply.
func (t *DonationTransitioner) classifyNoop(d *donation.Donation, target donation.Status, report StatusReport) Outcome {
	if d.Status() == target || d.Status().IsTerminal() {
		t.logger.Infow("donation already settled, delivery is a no-op",
			"donation_id", d.ID(),
			"status", d.Status(),
			"reported", target,
			"transaction_id", report.TransactionID,
		)
		return OutcomeAlreadyProcessed
	}
	t.logger.Warnw("payment report does not apply to donation",
		"donation_id", d.ID(),
		"status", d.Status(),
		"reported", target,
		"event_type", report.EventType,
	)
	return OutcomeIgnored
}

func (t *DonationTransitioner) applyToCampaign(ctx context.Context, d *donation.Donation, tr donation.Transition) ([]events.DomainEvent, error) {
	var apply func(c *campaign.Campaign) error
	switch {
	case tr.To == donation.StatusCompleted:
		apply = func(c *campaign.Campaign) error { return c.AddContribution(d.Amount()) }
	case tr.From == donation.StatusCompleted && tr.To == donation.StatusRefunded:
		apply = func(c *campaign.Campaign) error { return c.RemoveContribution(d.Amount()) }
	default:
		return nil, nil
	}

	c, err := t.campaigns.GetByID(ctx, d.CampaignID())
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign %d: %w", d.CampaignID(), err)
	}
	if err := apply(c); err != nil {
		return nil, err
	}
	if err := t.campaigns.Update(ctx, c); err != nil {
		return nil, err
	}
	return c.PullEvents(), nil
}

// dispatch runs listeners for committed events. Listener failures are
// logged and never undo the transition.
func (t *DonationTransitioner) dispatch(ctx context.Context, evts []events.DomainEvent) {
	for _, ev := range evts {
		if err := t.dispatcher.Dispatch(ctx, ev); err != nil {
			t.logger.Errorw("event listeners failed",
				"event_type", ev.EventType(),
				"aggregate_id", ev.AggregateID(),
				"error", err,
			)
		}
	}
}
