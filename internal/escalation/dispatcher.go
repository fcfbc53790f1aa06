package escalation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mindhaven/wellness-platform/internal/accounts"
	"github.com/mindhaven/wellness-platform/internal/risk"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

var (
	// ErrNoAlertChannel is returned when a protocol demands an emergency
	// alert but the account resolves to zero channels. A configuration gap,
	// not a user-visible crisis failure.
	ErrNoAlertChannel = errors.New("no alert channel configured for account")

	// ErrAlertPipelineUnavailable is recorded when a protocol demands an
	// emergency alert but no enqueuer is wired.
	ErrAlertPipelineUnavailable = errors.New("alert pipeline not configured")
)

// Stage tracks how far a dispatch progressed. Each transition is best-effort
// and independently fallible.
type Stage string

const (
	StageAssessed           Stage = "ASSESSED"
	StageLogged             Stage = "LOGGED"
	StageCounselorsNotified Stage = "COUNSELORS_NOTIFIED"
	StageAlertDispatched    Stage = "ALERT_DISPATCHED"
	StageDone               Stage = "DONE"
)

// Notice is what counselors receive about a triggered escalation.
type Notice struct {
	UserID  string
	Tier    risk.Tier
	Score   float64
	Factors []string
}

// AlertTask is the unit of work handed to the alert pipeline. It is executed
// by an independent worker so cancellation of the triggering request cannot
// cancel an in-flight alert.
type AlertTask struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Tier      risk.Tier `json:"tier"`
	Score     float64   `json:"score"`
	Channels  []Channel `json:"channels"`
	CreatedAt time.Time `json:"created_at"`
}

// CounselorNotifier notifies on-duty counselors about an escalation.
type CounselorNotifier interface {
	NotifyEscalation(ctx context.Context, n Notice) error
}

// AlertEnqueuer durably hands an alert task to the dispatch pipeline.
type AlertEnqueuer interface {
	Enqueue(ctx context.Context, task AlertTask) error
}

// AlertRecorder writes per-channel failure records when a task never reaches
// the alert pipeline, so every resolved channel still leaves an audit outcome.
type AlertRecorder interface {
	RecordUndeliverable(ctx context.Context, task AlertTask, reason string) error
}

// Result reports what the dispatcher actually did for one assessment.
type Result struct {
	Stage              Stage     `json:"stage"`
	Event              *Event    `json:"event,omitempty"`
	CounselorsNotified bool      `json:"counselors_notified"`
	AlertQueued        bool      `json:"alert_queued"`
	Channels           []Channel `json:"channels,omitempty"`
	AlertError         string    `json:"alert_error,omitempty"`
	ChannelErr         error     `json:"-"`
}

func (r *Result) setChannelErr(err error) {
	r.ChannelErr = err
	r.AlertError = err.Error()
}

// Dispatcher executes a tier's intervention protocol: write-ahead audit log,
// then counselor notification, then alert dispatch. Later steps never block
// on earlier best-effort failures.
type Dispatcher struct {
	events   *EventStore
	notifier CounselorNotifier
	alerts   AlertEnqueuer
	recorder AlertRecorder
	logger   *logging.Logger
}

// NewDispatcher creates an escalation dispatcher.
func NewDispatcher(events *EventStore, notifier CounselorNotifier, alerts AlertEnqueuer, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		events:   events,
		notifier: notifier,
		alerts:   alerts,
		logger:   logger,
	}
}

// WithAlertRecorder wires the fallback recorder used when a task cannot be
// handed to the alert pipeline.
func (d *Dispatcher) WithAlertRecorder(recorder AlertRecorder) *Dispatcher {
	d.recorder = recorder
	return d
}

// Dispatch runs the protocol for an assessed tier. The audit-log write is the
// only step whose failure aborts the dispatch; everything downstream degrades
// per channel.
func (d *Dispatcher) Dispatch(ctx context.Context, acct *accounts.Account, userID string, res risk.Result) (*Result, error) {
	proto := ProtocolFor(res.Tier)
	result := &Result{Stage: StageAssessed}

	if !proto.Escalate {
		result.Stage = StageDone
		return result, nil
	}

	factors := make([]string, 0, len(res.Signals))
	for _, sig := range res.Signals {
		factors = append(factors, sig.Evidence...)
	}

	// Write-ahead: the audit trail of intent must exist before any side
	// effect runs.
	event := &Event{
		UserID:                userID,
		Tier:                  res.Tier,
		Score:                 res.Score,
		Factors:               factors,
		InterventionTriggered: true,
	}
	if err := d.events.LogEvent(ctx, event); err != nil {
		return result, fmt.Errorf("escalation: write-ahead event log failed: %w", err)
	}
	result.Stage = StageLogged
	result.Event = event

	if proto.NotifyCounselors && d.notifier != nil {
		notice := Notice{UserID: userID, Tier: res.Tier, Score: res.Score, Factors: factors}
		if err := d.notifier.NotifyEscalation(ctx, notice); err != nil {
			d.logger.Error("counselor notification failed", "error", err, "user_id", userID, "tier", res.Tier)
		} else {
			result.CounselorsNotified = true
			result.Stage = StageCounselorsNotified
		}
	}

	if proto.SendEmergencyAlert {
		channels := ResolveChannels(acct)
		result.Channels = channels
		if len(channels) == 0 {
			d.logger.Error("emergency alert required but no channel configured", "user_id", userID)
			result.setChannelErr(ErrNoAlertChannel)
		} else {
			task := AlertTask{
				EventID:   event.ID,
				UserID:    userID,
				Tier:      res.Tier,
				Score:     res.Score,
				Channels:  channels,
				CreatedAt: time.Now().UTC(),
			}
			switch {
			case d.alerts == nil:
				d.logger.Error("emergency alert required but no enqueuer wired", "user_id", userID, "event_id", event.ID)
				result.setChannelErr(ErrAlertPipelineUnavailable)
				d.recordUndeliverable(ctx, task, ErrAlertPipelineUnavailable)
			default:
				if err := d.alerts.Enqueue(ctx, task); err != nil {
					d.logger.Error("alert enqueue failed", "error", err, "user_id", userID, "event_id", event.ID)
					result.setChannelErr(err)
					d.recordUndeliverable(ctx, task, err)
				} else {
					result.AlertQueued = true
					result.Stage = StageAlertDispatched
				}
			}
		}
	}

	result.Stage = StageDone
	return result, nil
}

// recordUndeliverable writes failed outcome records for every resolved channel
// of a task the pipeline never accepted, keeping the audit trail complete.
func (d *Dispatcher) recordUndeliverable(ctx context.Context, task AlertTask, cause error) {
	if d.recorder == nil {
		d.logger.Error("no alert recorder wired; undeliverable task leaves no channel records",
			"event_id", task.EventID, "user_id", task.UserID)
		return
	}
	if err := d.recorder.RecordUndeliverable(ctx, task, cause.Error()); err != nil {
		d.logger.Error("failed to record undeliverable alert", "error", err,
			"event_id", task.EventID, "user_id", task.UserID)
	}
}
