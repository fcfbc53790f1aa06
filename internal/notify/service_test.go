package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/wellness-platform/internal/counselors"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/internal/risk"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

type fakeEmail struct {
	sent []EmailMessage
	err  error
}

func (f *fakeEmail) Send(_ context.Context, msg EmailMessage) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeSMS struct {
	sent []string
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, to)
	return nil
}

type fakeRoster struct {
	onDuty []counselors.Counselor
	err    error
}

func (f *fakeRoster) OnDuty(_ context.Context) ([]counselors.Counselor, error) {
	return f.onDuty, f.err
}

func sampleNotice() escalation.Notice {
	return escalation.Notice{
		UserID:  "user-1",
		Tier:    risk.TierHigh,
		Score:   7.5,
		Factors: []string{"keyword: hopeless (high)", "mood: 1/5"},
	}
}

func TestNotifyEscalationFansOutToRoster(t *testing.T) {
	email := &fakeEmail{}
	sms := &fakeSMS{}
	roster := &fakeRoster{onDuty: []counselors.Counselor{
		{ID: "c1", Name: "Dana", Email: "dana@example.org"},
		{ID: "c2", Name: "Riley", Phone: "+15550002222"},
		{ID: "c3", Name: "Sam", Email: "sam@example.org", Phone: "+15550003333"},
	}}

	svc := NewService(email, sms, roster, logging.New("error"))
	require.NoError(t, svc.NotifyEscalation(context.Background(), sampleNotice()))

	require.Len(t, email.sent, 2)
	assert.Equal(t, "dana@example.org", email.sent[0].To)
	assert.Contains(t, email.sent[0].Subject, "HIGH")
	assert.Contains(t, email.sent[0].Body, "hopeless")
	assert.True(t, email.sent[0].Urgent, "escalation notices should be flagged urgent")

	require.Len(t, sms.sent, 2)
	assert.Equal(t, "+15550002222", sms.sent[0])
}

func TestNotifyEscalationEmptyRosterIsError(t *testing.T) {
	svc := NewService(&fakeEmail{}, &fakeSMS{}, &fakeRoster{}, logging.New("error"))

	err := svc.NotifyEscalation(context.Background(), sampleNotice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no counselors on duty")
}

func TestNotifyEscalationRosterFailure(t *testing.T) {
	roster := &fakeRoster{err: errors.New("redis down")}
	svc := NewService(&fakeEmail{}, &fakeSMS{}, roster, logging.New("error"))

	err := svc.NotifyEscalation(context.Background(), sampleNotice())
	require.Error(t, err)
}

func TestNotifyEscalationPartialFailureStillCounts(t *testing.T) {
	// Email fails for everyone, but SMS reaches one counselor: the notice
	// went out, so the result reports the failures without total loss.
	email := &fakeEmail{err: errors.New("sendgrid down")}
	sms := &fakeSMS{}
	roster := &fakeRoster{onDuty: []counselors.Counselor{
		{ID: "c1", Name: "Dana", Email: "dana@example.org", Phone: "+15550002222"},
	}}

	svc := NewService(email, sms, roster, logging.New("error"))
	err := svc.NotifyEscalation(context.Background(), sampleNotice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 notification(s) failed")
	assert.Len(t, sms.sent, 1)
}

func TestNotifyEscalationAllChannelsFail(t *testing.T) {
	email := &fakeEmail{err: errors.New("sendgrid down")}
	sms := &fakeSMS{err: errors.New("twilio down")}
	roster := &fakeRoster{onDuty: []counselors.Counselor{
		{ID: "c1", Name: "Dana", Email: "dana@example.org", Phone: "+15550002222"},
	}}

	svc := NewService(email, sms, roster, logging.New("error"))
	err := svc.NotifyEscalation(context.Background(), sampleNotice())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no counselor could be reached")
}

func TestStubSendersAreSafe(t *testing.T) {
	logger := logging.New("error")
	require.NoError(t, NewStubEmailSender(logger).Send(context.Background(), EmailMessage{To: "x@example.org"}))
	require.NoError(t, NewStubSMSSender(logger).SendSMS(context.Background(), "+15550001111", "hello"))

	simple := NewSimpleSMSSender(nil, logger)
	require.NoError(t, simple.SendSMS(context.Background(), "+15550001111", "hello"))

	var got string
	simple = NewSimpleSMSSender(func(_ context.Context, to, _ string) error {
		got = to
		return nil
	}, logger)
	require.NoError(t, simple.SendSMS(context.Background(), "+15550001111", "hello"))
	assert.Equal(t, "+15550001111", got)
}
