package valueobjects

// MailType selects the template a mail job is rendered with.
type MailType string

const (
	MailTypeDonorReceipt        MailType = "donor_receipt"
	MailTypeDonationAdminNotice MailType = "donation_admin_notice"
	MailTypePledgeCreated       MailType = "pledge_created"
	MailTypeOfflinePledge       MailType = "offline_pledge_created"
	MailTypePledgeCancelled     MailType = "pledge_cancelled"
	MailTypeGoalReached         MailType = "goal_reached"
	MailTypeCampaignEnded       MailType = "campaign_ended"
	MailTypeCampaignPostUpdate  MailType = "campaign_post_update"
)

var validMailTypes = map[MailType]bool{
	MailTypeDonorReceipt:        true,
	MailTypeDonationAdminNotice: true,
	MailTypePledgeCreated:       true,
	MailTypeOfflinePledge:       true,
	MailTypePledgeCancelled:     true,
	MailTypeGoalReached:         true,
	MailTypeCampaignEnded:       true,
	MailTypeCampaignPostUpdate:  true,
}

func (t MailType) IsValid() bool {
	return validMailTypes[t]
}

// AllMailTypes lists the mail types in a stable order.
func AllMailTypes() []MailType {
	return []MailType{
		MailTypeDonorReceipt,
		MailTypeDonationAdminNotice,
		MailTypePledgeCreated,
		MailTypeOfflinePledge,
		MailTypePledgeCancelled,
		MailTypeGoalReached,
		MailTypeCampaignEnded,
		MailTypeCampaignPostUpdate,
	}
}

func (t MailType) String() string {
	return string(t)
}

// JobStatus is the delivery state of a mail job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusDelivered JobStatus = "delivered"
	JobStatusDead      JobStatus = "dead"
)

func (s JobStatus) IsValid() bool {
	return s == JobStatusQueued || s == JobStatusDelivered || s == JobStatusDead
}

func (s JobStatus) IsFinal() bool {
	return s == JobStatusDelivered || s == JobStatusDead
}
