package email

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/fundhive/fundhive/internal/application/notification"
)

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// publisher is satisfied by *amqp.Channel.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPTransport hands rendered mails to an external mailer through a
// durable topic exchange.
type AMQPTransport struct {
	config  AMQPConfig
	channel publisher
	closer  func() error
}

// mailEnvelope is the JSON body published for each mail.
type mailEnvelope struct {
	JobID    string `json:"job_id"`
	MailType string `json:"mail_type"`
	To       string `json:"to"`
	ToName   string `json:"to_name,omitempty"`
	Subject  string `json:"subject"`
	HTML     string `json:"html"`
	Text     string `json:"text"`
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewAMQPTransport dials the broker and declares the exchange.
func NewAMQPTransport(config AMQPConfig) (*AMQPTransport, error) {
	cleanURL, err := sanitizeAMQPURL(config.URL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.Dial(cleanURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to amqp broker: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open amqp channel: %w", err)
	}
	if err := channel.ExchangeDeclare(config.Exchange, "topic", true, false, false, false, nil); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", config.Exchange, err)
	}

	return &AMQPTransport{
		config:  config,
		channel: channel,
		closer: func() error {
			channel.Close()
			return conn.Close()
		},
	}, nil
}

func (t *AMQPTransport) Send(ctx context.Context, msg notification.Message) error {
	body, err := json.Marshal(mailEnvelope{
		JobID:    msg.JobID,
		MailType: string(msg.MailType),
		To:       msg.To,
		ToName:   msg.ToName,
		Subject:  msg.Subject,
		HTML:     msg.HTML,
		Text:     msg.Text,
	})
	if err != nil {
		return fmt.Errorf("failed to encode mail: %w", err)
	}

	err = t.channel.PublishWithContext(ctx, t.config.Exchange, t.config.RoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.JobID,
		Type:         string(msg.MailType),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish mail: %w", err)
	}
	return nil
}

func (t *AMQPTransport) Close() error {
	if t.closer == nil {
		return nil
	}
	return t.closer()
}
