package notification

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/fundhive/fundhive/internal/domain/notification"
	vo "github.com/fundhive/fundhive/internal/domain/notification/valueobjects"
)

// Renderer turns a job payload into subject, sanitised HTML and the
// markdown source used as the plain-text part. Raw HTML in the markdown is
// kept by goldmark and cleaned by the bluemonday policy afterwards.
type Renderer struct {
	templates map[vo.MailType]*notification.MailTemplate
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
}

func NewRenderer(templates ...*notification.MailTemplate) *Renderer {
	r := &Renderer{
		templates: make(map[vo.MailType]*notification.MailTemplate, len(templates)),
		markdown:  goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe())),
		policy:    bluemonday.UGCPolicy(),
	}
	for _, t := range templates {
		r.templates[t.MailType()] = t
	}
	return r
}

func (r *Renderer) Render(mailType vo.MailType, data map[string]any) (subject, htmlBody, text string, err error) {
	tmpl, ok := r.templates[mailType]
	if !ok {
		return "", "", "", fmt.Errorf("no template for mail type %s", mailType)
	}

	subject, text, err = tmpl.Render(data)
	if err != nil {
		return "", "", "", err
	}

	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(text), &buf); err != nil {
		return "", "", "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return subject, r.policy.Sanitize(buf.String()), text, nil
}
