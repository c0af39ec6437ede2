package listeners

import (
	"context"
	"errors"
	"fmt"

	"github.com/fundhive/fundhive/internal/domain/campaign"
	"github.com/fundhive/fundhive/internal/domain/donation"
	"github.com/fundhive/fundhive/internal/domain/notification"
	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
	"github.com/fundhive/fundhive/internal/domain/shared/events"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

// MailScheduler is satisfied by the notification scheduler.
type MailScheduler interface {
	Schedule(ctx context.Context, job *notification.MailJob) error
}

// CampaignReader gives mail listeners read-only access to campaign details.
type CampaignReader interface {
	GetByID(ctx context.Context, id uint) (*campaign.Campaign, error)
}

// BackerLister lists the users who backed a campaign.
type BackerLister interface {
	ListBackerUserIDs(ctx context.Context, campaignID uint) ([]uint, error)
}

// mailListener builds zero or more jobs for an event and schedules them.
type mailListener struct {
	name      string
	scheduler MailScheduler
	build     func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error)
}

func (l *mailListener) Name() string { return l.name }

func (l *mailListener) Handle(ctx context.Context, event events.DomainEvent) error {
	params, err := l.build(ctx, event)
	if err != nil {
		return err
	}
	// One failed recipient does not cost the others their mail.
	var errs []error
	for _, p := range params {
		job, err := notification.NewMailJob(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("mail %s to user %d: %w", p.MailType, p.RecipientUserID, err))
			continue
		}
		if err := l.scheduler.Schedule(ctx, job); err != nil {
			errs = append(errs, fmt.Errorf("mail %s to user %d: %w", p.MailType, p.RecipientUserID, err))
		}
	}
	return errors.Join(errs...)
}

func groupKey(mailType vo.MailType, parts ...any) string {
	key := string(mailType)
	for _, p := range parts {
		key += fmt.Sprintf(":%v", p)
	}
	return key
}

// MailListeners builds the standard mail listeners.
type MailListeners struct {
	scheduler MailScheduler
	campaigns CampaignReader
	backers   BackerLister
	logger    logger.Interface
}

func NewMailListeners(scheduler MailScheduler, campaigns CampaignReader, backers BackerLister, logger logger.Interface) *MailListeners {
	return &MailListeners{
		scheduler: scheduler,
		campaigns: campaigns,
		backers:   backers,
		logger:    logger,
	}
}

func (m *MailListeners) listener(name string, build func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error)) events.Listener {
	return &mailListener{name: name, scheduler: m.scheduler, build: build}
}

func (m *MailListeners) campaignTitle(ctx context.Context, campaignID uint) string {
	c, err := m.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		m.logger.Warnw("campaign lookup failed for mail payload", "campaign_id", campaignID, "error", err)
		return ""
	}
	return c.Title()
}

func (m *MailListeners) donationPayload(ctx context.Context, s donation.Snapshot) map[string]any {
	return map[string]any{
		"order_id":       s.OrderID,
		"kind":           string(s.Kind),
		"amount":         s.Amount.String(),
		"gateway":        s.Gateway,
		"transaction_id": s.TransactionID,
		"campaign_id":    s.CampaignID,
		"campaign_title": m.campaignTitle(ctx, s.CampaignID),
	}
}

func campaignPayload(s campaign.Snapshot) map[string]any {
	return map[string]any{
		"campaign_id":    s.CampaignID,
		"campaign_title": s.Title,
		"goal":           s.Goal.String(),
		"raised":         s.Raised.String(),
	}
}

// DonorReceipt mails the donor once a donation or pledge is completed.
func (m *MailListeners) DonorReceipt() events.Listener {
	return m.listener("mail.donor_receipt", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*donation.StatusUpdateEvent)
		if !ok || !ev.Became(donation.StatusCompleted) || ev.UserID == 0 {
			return nil, nil
		}
		return []notification.NewMailJobParams{{
			MailType:        vo.MailTypeDonorReceipt,
			RecipientUserID: ev.UserID,
			Payload:         m.donationPayload(ctx, ev.Snapshot),
			Group:           groupKey(vo.MailTypeDonorReceipt, ev.DonationID),
		}}, nil
	})
}

// AdminNotice tells the administrator about every new donation or pledge.
func (m *MailListeners) AdminNotice() events.Listener {
	return m.listener("mail.donation_admin_notice", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*donation.CreatedEvent)
		if !ok {
			return nil, nil
		}
		return []notification.NewMailJobParams{{
			MailType:        vo.MailTypeDonationAdminNotice,
			RecipientUserID: notification.AdminRecipient,
			Payload:         m.donationPayload(ctx, ev.Snapshot),
			Group:           groupKey(vo.MailTypeDonationAdminNotice, ev.DonationID),
		}}, nil
	})
}

// pledgeGroup is shared by the pledge-created and offline-pledge mails so a
// backer gets only the first one scheduled.
func pledgeGroup(donationID uint) string {
	return groupKey(vo.MailTypePledgeCreated, donationID)
}

// OfflinePledge mails payment instructions for a new offline pledge. It is
// bound before PledgeCreated so it wins the shared group.
func (m *MailListeners) OfflinePledge() events.Listener {
	return m.listener("mail.offline_pledge_created", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*donation.CreatedEvent)
		if !ok || ev.Kind != donation.KindPledge || !ev.IsOffline || ev.UserID == 0 {
			return nil, nil
		}
		return []notification.NewMailJobParams{{
			MailType:        vo.MailTypeOfflinePledge,
			RecipientUserID: ev.UserID,
			Payload:         m.donationPayload(ctx, ev.Snapshot),
			Group:           pledgeGroup(ev.DonationID),
		}}, nil
	})
}

// PledgeCreated confirms a new pledge to the backer.
func (m *MailListeners) PledgeCreated() events.Listener {
	return m.listener("mail.pledge_created", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*donation.CreatedEvent)
		if !ok || ev.Kind != donation.KindPledge || ev.UserID == 0 {
			return nil, nil
		}
		return []notification.NewMailJobParams{{
			MailType:        vo.MailTypePledgeCreated,
			RecipientUserID: ev.UserID,
			Payload:         m.donationPayload(ctx, ev.Snapshot),
			Group:           pledgeGroup(ev.DonationID),
		}}, nil
	})
}

// PledgeCancelled tells the backer their pledge was cancelled.
func (m *MailListeners) PledgeCancelled() events.Listener {
	return m.listener("mail.pledge_cancelled", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*donation.StatusUpdateEvent)
		if !ok || ev.Kind != donation.KindPledge || !ev.Became(donation.StatusCancelled) || ev.UserID == 0 {
			return nil, nil
		}
		return []notification.NewMailJobParams{{
			MailType:        vo.MailTypePledgeCancelled,
			RecipientUserID: ev.UserID,
			Payload:         m.donationPayload(ctx, ev.Snapshot),
			Group:           groupKey(vo.MailTypePledgeCancelled, ev.DonationID),
		}}, nil
	})
}

// GoalReached mails the campaign owner and the administrator.
func (m *MailListeners) GoalReached() events.Listener {
	return m.listener("mail.goal_reached", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*campaign.GoalReachedEvent)
		if !ok {
			return nil, nil
		}
		recipients := []uint{ev.OwnerUserID, notification.AdminRecipient}
		out := make([]notification.NewMailJobParams, 0, len(recipients))
		for _, r := range recipients {
			out = append(out, notification.NewMailJobParams{
				MailType:        vo.MailTypeGoalReached,
				RecipientUserID: r,
				Payload:         campaignPayload(ev.Snapshot),
				Group:           groupKey(vo.MailTypeGoalReached, ev.CampaignID, r),
			})
		}
		return out, nil
	})
}

// CampaignEnded mails the campaign owner.
func (m *MailListeners) CampaignEnded() events.Listener {
	return m.listener("mail.campaign_ended", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*campaign.EndedEvent)
		if !ok {
			return nil, nil
		}
		payload := campaignPayload(ev.Snapshot)
		payload["goal_reached"] = ev.GoalReached
		return []notification.NewMailJobParams{{
			MailType:        vo.MailTypeCampaignEnded,
			RecipientUserID: ev.OwnerUserID,
			Payload:         payload,
			Group:           groupKey(vo.MailTypeCampaignEnded, ev.CampaignID),
		}}, nil
	})
}

// CampaignPostUpdate mails the update to every backer.
func (m *MailListeners) CampaignPostUpdate() events.Listener {
	return m.listener("mail.campaign_post_update", func(ctx context.Context, event events.DomainEvent) ([]notification.NewMailJobParams, error) {
		ev, ok := event.(*campaign.PostUpdateEvent)
		if !ok {
			return nil, nil
		}
		backers, err := m.backers.ListBackerUserIDs(ctx, ev.CampaignID)
		if err != nil {
			return nil, fmt.Errorf("failed to list backers of campaign %d: %w", ev.CampaignID, err)
		}
		out := make([]notification.NewMailJobParams, 0, len(backers))
		for _, userID := range backers {
			payload := campaignPayload(ev.Snapshot)
			payload["post_title"] = ev.PostTitle
			payload["post_body"] = ev.PostBody
			out = append(out, notification.NewMailJobParams{
				MailType:        vo.MailTypeCampaignPostUpdate,
				RecipientUserID: userID,
				Payload:         payload,
				Group:           groupKey(vo.MailTypeCampaignPostUpdate, ev.CampaignID, ev.OccurredAt().Unix(), userID),
			})
		}
		return out, nil
	})
}
