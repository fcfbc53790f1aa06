package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/internal/risk"
)

func queueTask(eventID string) escalation.AlertTask {
	return escalation.AlertTask{
		EventID: eventID,
		UserID:  "user-1",
		Tier:    risk.TierCritical,
		Channels: []escalation.Channel{
			{Type: escalation.ChannelGuardianSMS, Recipient: "+15550001111"},
		},
	}
}

func TestMemoryQueueRoundTrip(t *testing.T) {
	q := NewMemoryQueue(4)
	ctx := context.Background()

	require.NoError(t, q.Send(ctx, queueTask("evt-1")))
	require.NoError(t, q.Send(ctx, queueTask("evt-2")))

	msgs, err := q.Receive(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.NotEmpty(t, msgs[0].ReceiptHandle)

	var got escalation.AlertTask
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Body), &got))
	assert.Equal(t, "evt-1", got.EventID)
	assert.Equal(t, risk.TierCritical, got.Tier)
	require.Len(t, got.Channels, 1)
	assert.Equal(t, escalation.ChannelGuardianSMS, got.Channels[0].Type)

	require.NoError(t, json.Unmarshal([]byte(msgs[1].Body), &got))
	assert.Equal(t, "evt-2", got.EventID)

	require.NoError(t, q.Delete(ctx, msgs[0].ReceiptHandle))
}

func TestMemoryQueueReceiveTimesOutEmpty(t *testing.T) {
	q := NewMemoryQueue(1)

	msgs, err := q.Receive(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMemoryQueueReceiveHonorsContext(t *testing.T) {
	q := NewMemoryQueue(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Receive(ctx, 1, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryQueueRespectsMaxMessages(t *testing.T) {
	q := NewMemoryQueue(8)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Send(ctx, queueTask(fmt.Sprintf("evt-%d", i))))
	}

	msgs, err := q.Receive(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, msgs, 3)
}
