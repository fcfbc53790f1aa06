// Package notify fans escalation notices out to the on-duty counselor
// roster over email and SMS.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindhaven/wellness-platform/internal/counselors"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// SMSSender sends SMS messages to counselors.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// RosterSource lists the counselors currently on duty.
type RosterSource interface {
	OnDuty(ctx context.Context) ([]counselors.Counselor, error)
}

// Service handles sending escalation notices to counselors.
type Service struct {
	email  EmailSender
	sms    SMSSender
	roster RosterSource
	logger *logging.Logger
}

// NewService creates a notification service.
func NewService(email EmailSender, sms SMSSender, roster RosterSource, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:  email,
		sms:    sms,
		roster: roster,
		logger: logger,
	}
}

var _ escalation.CounselorNotifier = (*Service)(nil)

// NotifyEscalation fans the notice out to every on-duty counselor. Unlike
// guardian alerts, counselors are shown the tier, score, and contributing
// factors.
func (s *Service) NotifyEscalation(ctx context.Context, n escalation.Notice) error {
	if s.roster == nil {
		return fmt.Errorf("notify: counselor roster not configured")
	}

	onDuty, err := s.roster.OnDuty(ctx)
	if err != nil {
		s.logger.Error("notify: failed to load counselor roster", "error", err)
		return fmt.Errorf("notify: load roster: %w", err)
	}
	if len(onDuty) == 0 {
		s.logger.Error("notify: no counselors on duty for escalation", "user_id", n.UserID, "tier", n.Tier)
		return fmt.Errorf("notify: no counselors on duty")
	}

	factors := "none recorded"
	if len(n.Factors) > 0 {
		factors = strings.Join(n.Factors, "; ")
	}

	subject := fmt.Sprintf("Crisis escalation (%s) - user %s", n.Tier, n.UserID)
	body := fmt.Sprintf(`A crisis assessment has escalated.

User: %s
Tier: %s
Score: %.1f
Factors: %s

Please review the user's dashboard and reach out according to the %s protocol.`,
		n.UserID, n.Tier, n.Score, factors, n.Tier)

	html := fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 600px;">
<h2 style="color: #dc2626;">Crisis Escalation: %s</h2>
<table style="border-collapse: collapse; margin: 20px 0;">
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>User:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Tier:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Score:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%.1f</td></tr>
  <tr><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;"><strong>Factors:</strong></td><td style="padding: 8px; border-bottom: 1px solid #e5e7eb;">%s</td></tr>
</table>
<p style="background: #fef2f2; padding: 12px; border-radius: 8px; border-left: 4px solid #dc2626;">
  Please review the user's dashboard and reach out now.
</p>
</div>`, n.Tier, n.UserID, n.Tier, n.Score, factors)

	smsBody := fmt.Sprintf("MindHaven escalation: user %s is at %s (score %.1f). Please review the dashboard now.",
		n.UserID, n.Tier, n.Score)

	var errs []error
	notified := 0

	for _, c := range onDuty {
		if c.Email != "" && s.email != nil {
			msg := EmailMessage{
				To:      c.Email,
				ToName:  c.Name,
				Subject: subject,
				Body:    body,
				HTML:    html,
				Urgent:  true,
			}
			if err := s.email.Send(ctx, msg); err != nil {
				s.logger.Error("notify: failed to email counselor", "error", err, "counselor_id", c.ID)
				errs = append(errs, err)
			} else {
				notified++
				s.logger.Info("notify: escalation email sent", "counselor_id", c.ID, "user_id", n.UserID, "tier", n.Tier)
			}
		}

		if c.Phone != "" && s.sms != nil {
			if err := s.sms.SendSMS(ctx, c.Phone, smsBody); err != nil {
				s.logger.Error("notify: failed to SMS counselor", "error", err, "counselor_id", c.ID)
				errs = append(errs, err)
			} else {
				notified++
				s.logger.Info("notify: escalation SMS sent", "counselor_id", c.ID, "user_id", n.UserID, "tier", n.Tier)
			}
		}
	}

	if notified == 0 {
		return fmt.Errorf("notify: no counselor could be reached (%d failure(s))", len(errs))
	}
	if len(errs) > 0 {
		return fmt.Errorf("notify: %d notification(s) failed", len(errs))
	}
	return nil
}

// SimpleSMSSender provides a simple SMS sending implementation.
type SimpleSMSSender struct {
	sendFunc func(ctx context.Context, to, body string) error
	logger   *logging.Logger
}

// NewSimpleSMSSender creates an SMS sender with a custom send function.
func NewSimpleSMSSender(sendFunc func(ctx context.Context, to, body string) error, logger *logging.Logger) *SimpleSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &SimpleSMSSender{
		sendFunc: sendFunc,
		logger:   logger,
	}
}

// SendSMS sends an SMS message.
func (s *SimpleSMSSender) SendSMS(ctx context.Context, to, body string) error {
	if s.sendFunc == nil {
		s.logger.Warn("notify: SMS sender not configured")
		return nil
	}
	return s.sendFunc(ctx, to, body)
}

// StubSMSSender is a no-op sender for testing.
type StubSMSSender struct {
	logger *logging.Logger
}

// NewStubSMSSender creates a stub SMS sender.
func NewStubSMSSender(logger *logging.Logger) *StubSMSSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubSMSSender{logger: logger}
}

// SendSMS logs but doesn't send.
func (s *StubSMSSender) SendSMS(ctx context.Context, to, body string) error {
	s.logger.Info("stub SMS sender: would send", "to", to, "body_preview", truncate(body, 50))
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Ensure interface compliance
var _ SMSSender = (*SimpleSMSSender)(nil)
var _ SMSSender = (*StubSMSSender)(nil)
