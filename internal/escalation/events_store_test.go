package escalation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindhaven/wellness-platform/internal/risk"
)

func TestEventStoreLogEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewEventStore(db)

	mock.ExpectExec("INSERT INTO escalation_events").
		WillReturnResult(sqlmock.NewResult(1, 1))

	event := &Event{
		UserID:                "user-1",
		Tier:                  risk.TierHigh,
		Score:                 7.5,
		Factors:               []string{"hopeless (high)", "low mood rating (2/5)"},
		InterventionTriggered: true,
	}
	require.NoError(t, store.LogEvent(context.Background(), event))

	assert.NotEmpty(t, event.ID, "LogEvent assigns an id")
	assert.False(t, event.CreatedAt.IsZero(), "LogEvent stamps the event")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventStoreLogEventFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewEventStore(db)

	mock.ExpectExec("INSERT INTO escalation_events").
		WillReturnError(assert.AnError)

	err = store.LogEvent(context.Background(), &Event{UserID: "user-1", Tier: risk.TierCritical, Score: 9})
	assert.Error(t, err)
}

func TestEventStoreQueryEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewEventStore(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "user_id", "tier", "score", "factors", "intervention_triggered", "created_at"}).
		AddRow("e2", "user-1", "CRITICAL", 9.0, []byte(`["suicide (critical)"]`), true, now).
		AddRow("e1", "user-1", "HIGH", 7.0, []byte(`[]`), true, now.Add(-time.Hour))
	mock.ExpectQuery("SELECT id, user_id, tier").
		WithArgs("user-1").
		WillReturnRows(rows)

	events, err := store.QueryEvents(context.Background(), EventFilter{UserID: "user-1"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, risk.TierCritical, events[0].Tier)
	assert.Equal(t, []string{"suicide (critical)"}, events[0].Factors)
	assert.Nil(t, events[1].Factors)
}
