package alerts

import (
	"context"
	"errors"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/wellness-platform/internal/alerts/twilioclient"
	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/internal/risk"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

type fakeSMS struct {
	sent []struct{ to, body string }
	err  error
}

func (f *fakeSMS) SendSMS(_ context.Context, to, body string) (*twilioclient.MessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, struct{ to, body string }{to, body})
	return &twilioclient.MessageResponse{SID: "SM-test", Status: "queued"}, nil
}

func newGatewayWithMock(t *testing.T, sms SMSSender) (*Gateway, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	gw := NewGateway(GatewayConfig{
		SMS:      sms,
		Records:  newRecordStoreWithQuerier(mock),
		Hotline:  "988",
		TextLine: "741741",
		Logger:   logging.New("error"),
	})
	return gw, mock
}

func guardianTask() escalation.AlertTask {
	return escalation.AlertTask{
		EventID: "evt-1",
		UserID:  "user-1",
		Tier:    risk.TierCritical,
		Score:   9,
		Channels: []escalation.Channel{
			{Type: escalation.ChannelGuardianSMS, Recipient: "+15550001111", Label: "Alex"},
		},
	}
}

func expectRecordInsert(mock pgxmock.PgxPoolIface) {
	mock.ExpectExec("INSERT INTO alert_records").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
}

func TestGatewaySendsGuardianSMS(t *testing.T) {
	sms := &fakeSMS{}
	gw, mock := newGatewayWithMock(t, sms)
	expectRecordInsert(mock)

	records, err := gw.Execute(context.Background(), guardianTask())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, StatusSent, records[0].Status)
	assert.Equal(t, "SM-test", records[0].ProviderRef)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+15550001111", sms.sent[0].to)
	assert.Contains(t, sms.sent[0].body, "Hello Alex")
	assert.Contains(t, sms.sent[0].body, "988")
	assert.Contains(t, sms.sent[0].body, "741741")
	// The fixed template never carries assessment content.
	assert.NotContains(t, sms.sent[0].body, "CRITICAL")
	assert.NotContains(t, sms.sent[0].body, "score")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayGuardianFailsHardWithoutSMSProvider(t *testing.T) {
	gw, mock := newGatewayWithMock(t, nil)
	expectRecordInsert(mock)

	records, err := gw.Execute(context.Background(), guardianTask())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SMS service not configured")

	require.Len(t, records, 1)
	assert.Equal(t, StatusFailed, records[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGatewayRecordsProviderFailure(t *testing.T) {
	sms := &fakeSMS{err: errors.New("twilio down")}
	gw, mock := newGatewayWithMock(t, sms)
	expectRecordInsert(mock)

	records, err := gw.Execute(context.Background(), guardianTask())
	require.Error(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, StatusFailed, records[0].Status)
	assert.Contains(t, records[0].Detail, "twilio down")
}

func TestGatewayLogsManualChannels(t *testing.T) {
	gw, mock := newGatewayWithMock(t, nil)
	expectRecordInsert(mock)
	expectRecordInsert(mock)

	task := escalation.AlertTask{
		EventID: "evt-2",
		UserID:  "user-2",
		Tier:    risk.TierCritical,
		Score:   8,
		Channels: []escalation.Channel{
			{Type: escalation.ChannelEmergencyServices},
			{Type: escalation.ChannelCompanyHR, Label: "Acme Corp"},
		},
	}
	records, err := gw.Execute(context.Background(), task)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, StatusLogged, records[0].Status)
	assert.Equal(t, StatusLogged, records[1].Status)
}

func TestGatewayChannelsAreIndependent(t *testing.T) {
	// Guardian SMS fails but the company channel is still attempted.
	sms := &fakeSMS{err: errors.New("twilio down")}
	gw, mock := newGatewayWithMock(t, sms)
	expectRecordInsert(mock)
	expectRecordInsert(mock)

	task := guardianTask()
	task.Channels = append(task.Channels, escalation.Channel{
		Type: escalation.ChannelCompanyHR, Label: "Acme Corp",
	})

	records, err := gw.Execute(context.Background(), task)
	require.Error(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, StatusFailed, records[0].Status)
	assert.Equal(t, StatusLogged, records[1].Status)
}

func TestGatewayRejectsEmptyChannelSet(t *testing.T) {
	gw, _ := newGatewayWithMock(t, nil)

	task := guardianTask()
	task.Channels = nil
	_, err := gw.Execute(context.Background(), task)
	require.Error(t, err)
}
