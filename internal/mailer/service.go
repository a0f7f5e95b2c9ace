package mailer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/oaklinebank/oakline-backend/pkg/config"
	"github.com/oaklinebank/oakline-backend/pkg/logger"
)

// Publisher abstracts the Pub/Sub topic handle so tests can stub publishing.
type Publisher interface {
	Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult
}

// PublishResult mirrors the blocking side of a Pub/Sub publish call.
type PublishResult interface {
	Get(ctx context.Context) (string, error)
}

type gcpPublisher struct {
	*gcppubsub.Publisher
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) PublishResult {
	if p == nil || p.Publisher == nil {
		return nil
	}
	return p.Publisher.Publish(ctx, msg)
}

// NewGCPPublisher adapts a Pub/Sub publisher handle to the mailer's interface.
func NewGCPPublisher(p *gcppubsub.Publisher) Publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{Publisher: p}
}

// Service renders email bodies and enqueues them as Pub/Sub jobs. Delivery
// happens out of process in the worker's Consumer.
type Service struct {
	pub      Publisher
	logg     *logger.Logger
	siteName string
	timeout  time.Duration
}

// ServiceParams bundles the dependencies for the mailer service.
type ServiceParams struct {
	Publisher Publisher
	Logger    *logger.Logger
	Account   config.AccountConfig
}

const publishTimeout = 15 * time.Second

// NewService builds a mailer service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Publisher == nil {
		return nil, fmt.Errorf("publisher is required")
	}
	siteName := params.Account.SiteName
	if siteName == "" {
		siteName = "Oakline Bank"
	}
	return &Service{
		pub:      params.Publisher,
		logg:     params.Logger,
		siteName: siteName,
		timeout:  publishTimeout,
	}, nil
}

// SendWelcome enqueues the post-registration welcome message.
func (s *Service) SendWelcome(ctx context.Context, to, fullName, username string) error {
	html, plain, err := renderBodies("welcome", welcomeData{
		SiteName: s.siteName,
		FullName: fullName,
		Username: username,
	})
	if err != nil {
		return err
	}
	return s.enqueue(ctx, EmailTypeWelcome, JobPayload{
		To:        to,
		Subject:   fmt.Sprintf("Welcome to %s", s.siteName),
		HTMLBody:  html,
		PlainBody: plain,
	})
}

// SendOTP enqueues a one-time passcode message.
func (s *Service) SendOTP(ctx context.Context, to, fullName, code string, expiresAt time.Time) error {
	html, plain, err := renderBodies("otp", otpData{
		SiteName:  s.siteName,
		FullName:  fullName,
		Code:      code,
		ExpiresAt: expiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return err
	}
	return s.enqueue(ctx, EmailTypeOTP, JobPayload{
		To:        to,
		Subject:   fmt.Sprintf("Your %s passcode", s.siteName),
		HTMLBody:  html,
		PlainBody: plain,
	})
}

func (s *Service) enqueue(ctx context.Context, emailType string, payload JobPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode email job: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := s.pub.Publish(publishCtx, &gcppubsub.Message{
		Data:       data,
		Attributes: map[string]string{AttrEmailType: emailType},
	})
	if result == nil {
		return fmt.Errorf("publisher unavailable")
	}

	id, err := result.Get(publishCtx)
	if err != nil {
		return fmt.Errorf("publish email job: %w", err)
	}

	if s.logg != nil {
		fields := map[string]any{"message_id": id, "email_type": emailType}
		s.logg.Info(s.logg.WithFields(ctx, fields), "email job enqueued")
	}
	return nil
}
