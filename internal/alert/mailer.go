package alert

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

// Mailer delivers a rendered alert email and returns a message ID.
type Mailer interface {
	Send(ctx context.Context, email *Email) (string, error)
}

// SMTPConfig holds delivery settings for the SMTP mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPMailer delivers alert emails over authenticated SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

var _ Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a mailer for the given SMTP endpoint.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	return &SMTPMailer{cfg: cfg}
}

// Send delivers the email and returns its Message-ID.
func (m *SMTPMailer) Send(ctx context.Context, email *Email) (string, error) {
	msg := mail.NewMsg()
	if err := msg.From(email.From); err != nil {
		return "", fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(email.To); err != nil {
		return "", fmt.Errorf("invalid recipient address: %w", err)
	}
	messageID := uuid.NewString()
	msg.SetMessageIDWithValue(messageID)
	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextPlain, email.TextBody)
	msg.AddAlternativeString(mail.TypeTextHTML, email.HTMLBody)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to send mail: %w", err)
	}
	return messageID, nil
}
