// Package alert sends incident notification emails. Delivery failures are
// absorbed into the result so a broken mail path never aborts a pipeline run.
package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/guardline/incident-agent/internal/retry"
	"github.com/guardline/incident-agent/internal/types"
)

// Config holds the addressing for outgoing alerts. Empty sender or
// recipient disables delivery; the sender reports the misconfiguration in
// the result instead of failing.
type Config struct {
	Sender    string
	Recipient string
}

// SendResult reports the outcome of one alert attempt. Err is populated on
// failure; the alert step itself always completes.
type SendResult struct {
	MessageID string
	Err       error
}

// Sender dispatches alert emails with retry, absorbing all failures.
type Sender struct {
	mailer Mailer
	cfg    Config
	retry  retry.Config
	now    func() time.Time
}

// NewSender wires a mailer with addressing config and the shared retry
// policy.
func NewSender(m Mailer, cfg Config) *Sender {
	return &Sender{
		mailer: m,
		cfg:    cfg,
		retry:  retry.DefaultConfig(),
		now:    time.Now,
	}
}

// Send renders and delivers an alert for the incident. It never returns an
// error: delivery failures, exhausted retries, and service unavailability
// all land in SendResult.Err.
func (s *Sender) Send(ctx context.Context, inc types.Incident) SendResult {
	if s.cfg.Sender == "" || s.cfg.Recipient == "" {
		err := errors.New("alert sender or recipient not configured")
		slog.Error("skipping alert email", "error", err)
		return SendResult{Err: err}
	}

	timestamp := s.now().UTC().Truncate(time.Second).Format(time.RFC3339)
	email := &Email{
		From:     s.cfg.Sender,
		To:       s.cfg.Recipient,
		Subject:  Subject(inc),
		HTMLBody: buildHTMLBody(inc, timestamp),
		TextBody: buildTextBody(inc, timestamp),
	}

	slog.Info("sending incident alert email",
		"recipient", s.cfg.Recipient,
		"location", inc.Location)

	var messageID string
	err := retry.Do(ctx, s.retry, "alert send", func() error {
		id, err := s.mailer.Send(ctx, email)
		if err != nil {
			return err
		}
		messageID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, retry.ErrServiceUnavailable) {
			slog.Error("alert service unavailable, continuing without alert")
			return SendResult{Err: fmt.Errorf("alert service unavailable: %w", err)}
		}
		slog.Error("failed to send alert email after retries", "error", err)
		return SendResult{Err: err}
	}

	slog.Info("sent incident alert email", "message_id", messageID)
	return SendResult{MessageID: messageID}
}
