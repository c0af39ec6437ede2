package listeners

import (
	"github.com/fundhive/fundhive/internal/domain/shared/events"
)

// NewBindingTable wires the standard listeners in their fixed order and
// freezes the table. The activity entry is always written first.
func NewBindingTable(activity *ActivityListener, mail *MailListeners) *events.BindingTable {
	return events.NewBindingTable().
		Bind(events.DonationCreated, activity, mail.AdminNotice()).
		Bind(events.PledgeCreated, activity, mail.AdminNotice(), mail.OfflinePledge(), mail.PledgeCreated()).
		Bind(events.DonationStatusUpdate, activity, mail.DonorReceipt()).
		Bind(events.PledgeStatusUpdate, activity, mail.DonorReceipt(), mail.PledgeCancelled()).
		Bind(events.GoalReached, activity, mail.GoalReached()).
		Bind(events.CampaignStatusUpdate, activity).
		Bind(events.CampaignPostUpdate, activity, mail.CampaignPostUpdate()).
		Bind(events.CampaignEnded, activity, mail.CampaignEnded()).
		Freeze()
}
