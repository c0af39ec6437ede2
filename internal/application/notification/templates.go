package notification

import (
	"fmt"

	"github.com/fundhive/fundhive/internal/domain/notification"
	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
)

type templateSource struct {
	mailType vo.MailType
	subject  string
	body     string
}

var defaultTemplateSources = []templateSource{
	{
		mailType: vo.MailTypeDonorReceipt,
		subject:  "Thank you for supporting {{.campaign_title}}",
		body: `Hi {{.recipient_name}},

Your donation **{{.order_id}}** of **{{.amount}}** to *{{.campaign_title}}* has been received.

Keep this mail as your receipt.
`,
	},
	{
		mailType: vo.MailTypeDonationAdminNotice,
		subject:  "New {{.kind}} {{.order_id}}",
		body: `A new {{.kind}} was created.

- Order: {{.order_id}}
- Campaign: {{.campaign_title}}
- Amount: {{.amount}}
- Gateway: {{.gateway}}
`,
	},
	{
		mailType: vo.MailTypePledgeCreated,
		subject:  "Your pledge to {{.campaign_title}}",
		body: `Hi {{.recipient_name}},

We recorded your pledge **{{.order_id}}** of **{{.amount}}** to *{{.campaign_title}}*.
`,
	},
	{
		mailType: vo.MailTypeOfflinePledge,
		subject:  "Complete your pledge to {{.campaign_title}}",
		body: `Hi {{.recipient_name}},

Your offline pledge **{{.order_id}}** of **{{.amount}}** is waiting for payment.
Use the reference {{.order_id}} when you transfer the funds.
`,
	},
	{
		mailType: vo.MailTypePledgeCancelled,
		subject:  "Your pledge {{.order_id}} was cancelled",
		body: `Hi {{.recipient_name}},

Your pledge **{{.order_id}}** to *{{.campaign_title}}* was cancelled. No funds will be collected.
`,
	},
	{
		mailType: vo.MailTypeGoalReached,
		subject:  "{{.campaign_title}} reached its goal",
		body: `Good news!

*{{.campaign_title}}* raised **{{.raised}}** and reached its goal of {{.goal}}.
`,
	},
	{
		mailType: vo.MailTypeCampaignEnded,
		subject:  "{{.campaign_title}} has ended",
		body: `Your campaign *{{.campaign_title}}* has ended with **{{.raised}}** raised of {{.goal}}.
{{if .goal_reached}}
The goal was reached.
{{else}}
The goal was not reached.
{{end}}`,
	},
	{
		mailType: vo.MailTypeCampaignPostUpdate,
		subject:  "{{.campaign_title}}: {{.post_title}}",
		body: `## {{.post_title}}

{{.post_body}}
`,
	},
}

// DefaultTemplates returns the built-in template for every mail type.
func DefaultTemplates() ([]*notification.MailTemplate, error) {
	out := make([]*notification.MailTemplate, 0, len(defaultTemplateSources))
	for _, src := range defaultTemplateSources {
		t, err := notification.NewMailTemplate(src.mailType, src.subject, src.body)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", src.mailType, err)
		}
		out = append(out, t)
	}
	return out, nil
}
