package email

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fundhive/fundhive/internal/application/notification"
	"github.com/fundhive/fundhive/internal/shared/config"
	"github.com/fundhive/fundhive/internal/shared/logger"
)

var ErrEmailServiceNotConfigured = errors.New("email service is not configured")

// LogTransport writes mails to the log instead of sending them.
type LogTransport struct {
	logger logger.Interface
}

func NewLogTransport(log logger.Interface) *LogTransport {
	return &LogTransport{logger: log}
}

func (t *LogTransport) Send(ctx context.Context, msg notification.Message) error {
	t.logger.Infow("mail (log transport)",
		"job_id", msg.JobID,
		"mail_type", msg.MailType,
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewTransport builds the transport selected by cfg.Transport. The closer
// releases broker connections on shutdown.
func NewTransport(cfg config.EmailConfig, amqpCfg config.AMQPConfig, log logger.Interface) (notification.MailTransport, io.Closer, error) {
	switch cfg.Transport {
	case "", "log":
		log.Warnw("mail transport is log only, mails will not be sent")
		return NewLogTransport(log.Named("email.log")), nopCloser{}, nil
	case "smtp":
		if cfg.SMTPHost == "" {
			return nil, nil, fmt.Errorf("smtp transport: %w", ErrEmailServiceNotConfigured)
		}
		log.Infow("email service initialized",
			"transport", "smtp",
			"host", cfg.SMTPHost,
			"port", cfg.SMTPPort,
			"from", cfg.FromAddress,
		)
		return NewSMTPTransport(SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUser,
			Password:    cfg.SMTPPassword,
			FromAddress: cfg.FromAddress,
			FromName:    cfg.FromName,
		}), nopCloser{}, nil
	case "amqp":
		if amqpCfg.URL == "" {
			return nil, nil, fmt.Errorf("amqp transport: %w", ErrEmailServiceNotConfigured)
		}
		t, err := NewAMQPTransport(AMQPConfig{
			URL:        amqpCfg.URL,
			Exchange:   amqpCfg.Exchange,
			RoutingKey: amqpCfg.RoutingKey,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Infow("email service initialized", "transport", "amqp", "exchange", amqpCfg.Exchange)
		return t, t, nil
	default:
		return nil, nil, fmt.Errorf("unknown mail transport %q", cfg.Transport)
	}
}
