package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindhaven/wellness-platform/internal/escalation"
)

// Status values for a delivered alert record.
const (
	StatusSent   = "sent"
	StatusFailed = "failed"
	StatusLogged = "logged"
)

// Record is the audit row written for each channel attempt of an alert task.
type Record struct {
	ID          uuid.UUID          `json:"id"`
	EventID     string             `json:"event_id"`
	UserID      string             `json:"user_id"`
	Channel     escalation.Channel `json:"channel"`
	Status      string             `json:"status"`
	ProviderRef string             `json:"provider_ref,omitempty"`
	Detail      string             `json:"detail,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

type recordQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// RecordStore persists alert delivery records.
type RecordStore struct {
	db recordQuerier
}

func NewRecordStore(pool *pgxpool.Pool) *RecordStore {
	if pool == nil {
		panic("alerts: pgx pool required")
	}
	return &RecordStore{db: pool}
}

func newRecordStoreWithQuerier(db recordQuerier) *RecordStore {
	return &RecordStore{db: db}
}

func (s *RecordStore) Insert(ctx context.Context, rec *Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	query := `
		INSERT INTO alert_records (id, event_id, user_id, channel, recipient, status, provider_ref, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.Exec(ctx, query,
		rec.ID, rec.EventID, rec.UserID, string(rec.Channel.Type), rec.Channel.Recipient,
		rec.Status, rec.ProviderRef, rec.Detail, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("alerts: insert record: %w", err)
	}
	return nil
}

// RecordUndeliverable writes a failed record for every channel of a task that
// never reached the queue, so the audit trail shows an outcome per channel
// even when the pipeline itself is down.
func (s *RecordStore) RecordUndeliverable(ctx context.Context, task escalation.AlertTask, reason string) error {
	var firstErr error
	for _, ch := range task.Channels {
		rec := Record{
			EventID: task.EventID,
			UserID:  task.UserID,
			Channel: ch,
			Status:  StatusFailed,
			Detail:  reason,
		}
		if err := s.Insert(ctx, &rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ escalation.AlertRecorder = (*RecordStore)(nil)

// ListByUser returns alert records for a user, newest first.
func (s *RecordStore) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, event_id, user_id, channel, recipient, status, provider_ref, detail, created_at
		FROM alert_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("alerts: list records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var channel, recipient string
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.UserID, &channel, &recipient, &rec.Status, &rec.ProviderRef, &rec.Detail, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("alerts: scan record: %w", err)
		}
		rec.Channel = escalation.Channel{Type: escalation.ChannelType(channel), Recipient: recipient}
		records = append(records, rec)
	}
	return records, rows.Err()
}
