package escalation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mindhaven/wellness-platform/internal/risk"
)

// Event is an immutable audit record marking that a tier's protocol was
// triggered for a user. Append-only; the engine never deletes rows.
type Event struct {
	ID                    string    `json:"id"`
	UserID                string    `json:"user_id"`
	Tier                  risk.Tier `json:"tier"`
	Score                 float64   `json:"score"`
	Factors               []string  `json:"factors,omitempty"`
	InterventionTriggered bool      `json:"intervention_triggered"`
	CreatedAt             time.Time `json:"created_at"`
}

// EventStore handles escalation audit logging.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new escalation event store.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// LogEvent records an escalation event. This is the write-ahead step of every
// dispatch: it must succeed before any side effect runs.
func (s *EventStore) LogEvent(ctx context.Context, event *Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	factors, err := marshalFactors(event.Factors)
	if err != nil {
		return fmt.Errorf("escalation: encode factors: %w", err)
	}

	query := `
		INSERT INTO escalation_events (
			id, user_id, tier, score, factors, intervention_triggered, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		string(event.Tier),
		event.Score,
		factors,
		event.InterventionTriggered,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("escalation: failed to log event: %w", err)
	}
	return nil
}

// EventFilter specifies criteria for querying escalation events.
type EventFilter struct {
	UserID    string
	Tier      risk.Tier
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// QueryEvents retrieves escalation events with filters, newest first.
func (s *EventStore) QueryEvents(ctx context.Context, filter EventFilter) ([]Event, error) {
	query := `
		SELECT id, user_id, tier, score, factors, intervention_triggered, created_at
		FROM escalation_events
		WHERE user_id = $1
	`
	args := []interface{}{filter.UserID}
	argIdx := 2

	if filter.Tier != "" {
		query += fmt.Sprintf(" AND tier = $%d", argIdx)
		args = append(args, string(filter.Tier))
		argIdx++
	}
	if !filter.StartTime.IsZero() {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, filter.StartTime)
		argIdx++
	}
	if !filter.EndTime.IsZero() {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, filter.EndTime)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("escalation: failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var factors []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Tier, &e.Score, &factors, &e.InterventionTriggered, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("escalation: failed to scan event: %w", err)
		}
		if e.Factors, err = unmarshalFactors(factors); err != nil {
			return nil, fmt.Errorf("escalation: decode factors: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
