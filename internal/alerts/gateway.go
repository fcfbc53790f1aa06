package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mindhaven/wellness-platform/internal/alerts/twilioclient"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// ErrSMSNotConfigured indicates a guardian SMS was required but no SMS
// provider credentials were supplied. This is a hard failure: a silent skip
// here would drop a safety-critical notification.
var ErrSMSNotConfigured = errors.New("alerts: SMS service not configured")

// SMSSender sends one SMS and returns the provider's message resource.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) (*twilioclient.MessageResponse, error)
}

// DeliveryMetrics observes per-channel alert outcomes.
type DeliveryMetrics interface {
	ObserveAlert(channel, status string)
}

// Gateway executes an alert task against its resolved channels and writes one
// audit record per channel attempt. Channels are attempted independently; one
// failure never skips the remaining channels.
type Gateway struct {
	sms      SMSSender
	records  *RecordStore
	hotline  string
	textLine string
	metrics  DeliveryMetrics
	logger   *logging.Logger
}

// GatewayConfig wires a Gateway. SMS may be nil when no provider credentials
// exist; guardian sends then fail hard and are recorded as failed.
type GatewayConfig struct {
	SMS      SMSSender
	Records  *RecordStore
	Hotline  string
	TextLine string
	Metrics  DeliveryMetrics
	Logger   *logging.Logger
}

func NewGateway(cfg GatewayConfig) *Gateway {
	if cfg.Records == nil {
		panic("alerts: record store required")
	}
	hotline := strings.TrimSpace(cfg.Hotline)
	if hotline == "" {
		hotline = "988"
	}
	textLine := strings.TrimSpace(cfg.TextLine)
	if textLine == "" {
		textLine = "741741"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Gateway{
		sms:      cfg.SMS,
		records:  cfg.Records,
		hotline:  hotline,
		textLine: textLine,
		metrics:  cfg.Metrics,
		logger:   logger,
	}
}

// Execute attempts every channel on the task. The returned records mirror
// what was persisted; the returned error joins all hard channel failures and
// is nil only when no channel failed.
func (g *Gateway) Execute(ctx context.Context, task escalation.AlertTask) ([]Record, error) {
	if len(task.Channels) == 0 {
		return nil, fmt.Errorf("alerts: task %s has no channels", task.EventID)
	}

	var (
		records []Record
		errs    []error
	)
	for _, ch := range task.Channels {
		rec := g.executeChannel(ctx, task, ch)
		if rec.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("alerts: channel %s: %s", ch.Type, rec.Detail))
		}
		if g.metrics != nil {
			g.metrics.ObserveAlert(string(ch.Type), rec.Status)
		}
		if err := g.records.Insert(ctx, &rec); err != nil {
			g.logger.Error("failed to persist alert record",
				"error", err, "event_id", task.EventID, "channel", ch.Type)
			errs = append(errs, err)
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

func (g *Gateway) executeChannel(ctx context.Context, task escalation.AlertTask, ch escalation.Channel) Record {
	rec := Record{
		EventID: task.EventID,
		UserID:  task.UserID,
		Channel: ch,
	}

	switch ch.Type {
	case escalation.ChannelGuardianSMS:
		if g.sms == nil {
			g.logger.Error("guardian alert required but SMS is not configured",
				"event_id", task.EventID, "user_id", task.UserID)
			rec.Status = StatusFailed
			rec.Detail = ErrSMSNotConfigured.Error()
			return rec
		}
		resp, err := g.sms.SendSMS(ctx, ch.Recipient, g.guardianMessage(ch.Label))
		if err != nil {
			g.logger.Error("guardian alert SMS failed",
				"error", err, "event_id", task.EventID, "user_id", task.UserID)
			rec.Status = StatusFailed
			rec.Detail = err.Error()
			return rec
		}
		rec.Status = StatusSent
		rec.ProviderRef = resp.SID
		g.logger.Info("guardian alert SMS sent",
			"event_id", task.EventID, "user_id", task.UserID, "provider_ref", resp.SID)
		return rec

	case escalation.ChannelEmergencyServices:
		// No dispatch integration exists; the event is logged for manual
		// follow-up by the crisis response team.
		g.logger.Warn("emergency services alert logged for manual dispatch",
			"event_id", task.EventID, "user_id", task.UserID, "tier", task.Tier, "score", task.Score)
		rec.Status = StatusLogged
		rec.Detail = "manual dispatch required"
		return rec

	case escalation.ChannelCompanyHR:
		g.logger.Warn("company HR alert logged",
			"event_id", task.EventID, "user_id", task.UserID, "company", ch.Label)
		rec.Status = StatusLogged
		rec.Detail = "wellness team notification logged"
		return rec

	default:
		g.logger.Error("unknown alert channel", "event_id", task.EventID, "channel", ch.Type)
		rec.Status = StatusFailed
		rec.Detail = fmt.Sprintf("unknown channel %q", ch.Type)
		return rec
	}
}

// The guardian message is a fixed template: no assessment content or scores
// are disclosed to the recipient.
func (g *Gateway) guardianMessage(label string) string {
	greeting := "Hello"
	if strings.TrimSpace(label) != "" {
		greeting = "Hello " + strings.TrimSpace(label)
	}
	return fmt.Sprintf(
		"%s, this is a MindHaven safety alert. Someone who listed you as their emergency contact may need immediate support. Please check on them now. If they are in danger, call 911. Crisis support is available any time: call %s, or text HOME to %s.",
		greeting, g.hotline, g.textLine,
	)
}
