package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/fundhive/fundhive/internal/application/notification"
)

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromAddress string
	FromName    string
}

// mailSender is satisfied by *gomail.Dialer.
type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPTransport delivers rendered mails over SMTP.
type SMTPTransport struct {
	config SMTPConfig
	sender mailSender
}

func NewSMTPTransport(config SMTPConfig) *SMTPTransport {
	return &SMTPTransport{
		config: config,
		sender: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
	}
}

func (s *SMTPTransport) Send(ctx context.Context, msg notification.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.sender.DialAndSend(s.buildMessage(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *SMTPTransport) buildMessage(msg notification.Message) *gomail.Message {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.config.FromAddress, s.config.FromName)
	if msg.ToName != "" {
		m.SetAddressHeader("To", msg.To, msg.ToName)
	} else {
		m.SetHeader("To", msg.To)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetHeader("X-Mail-Job", msg.JobID)
	m.SetBody("text/plain", msg.Text)
	m.AddAlternative("text/html", msg.HTML)
	return m
}
