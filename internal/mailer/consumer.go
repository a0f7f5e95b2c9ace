package mailer

import (
	"context"
	"encoding/json"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/wneessen/go-mail"

	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/logger"
)

// Sender delivers a rendered email job.
type Sender interface {
	Send(ctx context.Context, job JobPayload) error
}

// SMTPSender delivers jobs over SMTP using go-mail.
type SMTPSender struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTPSender builds a sender against the configured SMTP relay. Local
// relays (mailpit) speak plain SMTP, hence the opportunistic TLS policy.
func NewSMTPSender(cfg config.SMTPConfig) (*SMTPSender, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return &SMTPSender{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
	}, nil
}

// Send delivers a single job.
func (s *SMTPSender) Send(ctx context.Context, job JobPayload) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(job.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(job.Subject)
	msg.SetBodyString(mail.TypeTextPlain, job.PlainBody)
	if job.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, job.HTMLBody)
	}

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// Consumer drains the email job subscription and hands each job to the sender.
type Consumer struct {
	subscription *gcppubsub.Subscriber
	sender       Sender
	logg         *logger.Logger
}

// NewConsumer builds an email job consumer.
func NewConsumer(subscription *gcppubsub.Subscriber, sender Sender, logg *logger.Logger) (*Consumer, error) {
	if subscription == nil {
		return nil, fmt.Errorf("email subscription required")
	}
	if sender == nil {
		return nil, fmt.Errorf("sender required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		subscription: subscription,
		sender:       sender,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *gcppubsub.Message) {
		if c.process(ctx, msg.ID, msg.Attributes, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process handles a single message; the boolean is the ack decision.
// Malformed payloads ack (redelivery cannot fix them); transient send
// failures nack for retry.
func (c *Consumer) process(ctx context.Context, msgID string, attributes map[string]string, data []byte) bool {
	fields := map[string]any{
		"message_id": msgID,
		"email_type": attributes[AttrEmailType],
	}
	logCtx := c.logg.WithFields(ctx, fields)

	var job JobPayload
	if err := json.Unmarshal(data, &job); err != nil {
		c.logg.Error(logCtx, "failed to decode email job", err)
		return true
	}
	if job.To == "" {
		c.logg.Error(logCtx, "email job missing recipient", nil)
		return true
	}

	if err := c.sender.Send(ctx, job); err != nil {
		c.logg.Error(logCtx, "email delivery failed", err)
		return false
	}

	c.logg.Info(logCtx, "email delivered")
	return true
}
