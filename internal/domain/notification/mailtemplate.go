package notification

import (
	"bytes"
	"fmt"
	"text/template"

	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
)

// MailTemplate renders a subject line and a markdown body from a job payload.
type MailTemplate struct {
	mailType vo.MailType
	subject  *template.Template
	body     *template.Template
}

func NewMailTemplate(mailType vo.MailType, subject, body string) (*MailTemplate, error) {
	if !mailType.IsValid() {
		return nil, fmt.Errorf("invalid mail type %q", mailType)
	}
	if subject == "" || body == "" {
		return nil, fmt.Errorf("template %s needs a subject and a body", mailType)
	}

	subjectTmpl, err := template.New(string(mailType) + ".subject").Option("missingkey=zero").Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("failed to parse subject template: %w", err)
	}
	bodyTmpl, err := template.New(string(mailType) + ".body").Option("missingkey=zero").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse body template: %w", err)
	}

	return &MailTemplate{mailType: mailType, subject: subjectTmpl, body: bodyTmpl}, nil
}

func (t *MailTemplate) MailType() vo.MailType {
	return t.mailType
}

// Render returns the subject and the markdown body.
func (t *MailTemplate) Render(data map[string]any) (string, string, error) {
	var subject bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("failed to execute subject template: %w", err)
	}

	var body bytes.Buffer
	if err := t.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute body template: %w", err)
	}

	return subject.String(), body.String(), nil
}
