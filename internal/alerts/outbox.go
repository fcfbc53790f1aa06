package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindhaven/wellness-platform/internal/escalation"
	"github.com/mindhaven/wellness-platform/pkg/logging"
)

// OutboxEntry is a pending alert task awaiting delivery to the queue.
type OutboxEntry struct {
	ID        uuid.UUID
	UserID    string
	Payload   json.RawMessage
	CreatedAt time.Time
}

// DeliveryHandler emits alert tasks to downstream transports.
type DeliveryHandler interface {
	Handle(ctx context.Context, entry OutboxEntry) error
}

type outboxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OutboxStore persists alert tasks for reliable delivery. The insert is the
// durability point: once a row exists the alert survives process crashes and
// request cancellation.
type OutboxStore struct {
	db outboxQuerier
}

// NewOutboxStore creates an OutboxStore backed by the given pool.
func NewOutboxStore(pool *pgxpool.Pool) *OutboxStore {
	if pool == nil {
		panic("alerts: pgx pool required")
	}
	return &OutboxStore{db: pool}
}

func newOutboxStoreWithQuerier(db outboxQuerier) *OutboxStore {
	return &OutboxStore{db: db}
}

// Enqueue satisfies escalation.AlertEnqueuer by writing the task to the
// outbox table.
func (s *OutboxStore) Enqueue(ctx context.Context, task escalation.AlertTask) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("alerts: marshal task: %w", err)
	}
	id := uuid.New()
	query := `
		INSERT INTO alert_outbox (id, user_id, payload)
		VALUES ($1, $2, $3)
	`
	if _, err := s.db.Exec(ctx, query, id, task.UserID, data); err != nil {
		return fmt.Errorf("alerts: insert outbox: %w", err)
	}
	return nil
}

func (s *OutboxStore) FetchPending(ctx context.Context, limit int32) ([]OutboxEntry, error) {
	query := `
		SELECT id, user_id, payload, created_at
		FROM alert_outbox
		WHERE delivered_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("alerts: fetch pending: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		var entry OutboxEntry
		var payload []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &payload, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("alerts: scan outbox: %w", err)
		}
		entry.Payload = append([]byte(nil), payload...)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *OutboxStore) MarkDelivered(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE alert_outbox
		SET delivered_at = now()
		WHERE id = $1 AND delivered_at IS NULL
	`
	ct, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("alerts: mark delivered: %w", err)
	}
	return ct.RowsAffected() == 1, nil
}

// Deliverer polls the outbox and invokes the handler. Rows stay pending until
// the handler succeeds, so a crashed publish is retried on the next tick.
type Deliverer struct {
	store     *OutboxStore
	handler   DeliveryHandler
	logger    *logging.Logger
	batchSize int32
	interval  time.Duration
}

func NewDeliverer(store *OutboxStore, handler DeliveryHandler, logger *logging.Logger) *Deliverer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Deliverer{
		store:     store,
		handler:   handler,
		logger:    logger,
		batchSize: 25,
		interval:  2 * time.Second,
	}
}

func (d *Deliverer) WithBatchSize(size int32) *Deliverer {
	if size > 0 {
		d.batchSize = size
	}
	return d
}

func (d *Deliverer) WithInterval(interval time.Duration) *Deliverer {
	if interval > 0 {
		d.interval = interval
	}
	return d
}

func (d *Deliverer) Start(ctx context.Context) {
	if d.store == nil || d.handler == nil {
		return
	}
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Deliverer) drain(ctx context.Context) {
	entries, err := d.store.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.Error("alert outbox fetch failed", "error", err)
		return
	}
	for _, entry := range entries {
		if err := d.handler.Handle(ctx, entry); err != nil {
			d.logger.Error("alert delivery failed", "error", err, "outbox_id", entry.ID, "user_id", entry.UserID)
			continue
		}
		if ok, err := d.store.MarkDelivered(ctx, entry.ID); err != nil {
			d.logger.Error("failed to mark alert delivered", "error", err, "outbox_id", entry.ID)
		} else if ok {
			d.logger.Debug("alert task published", "outbox_id", entry.ID, "user_id", entry.UserID)
		}
	}
}

// QueuePublisher decodes outbox payloads back into alert tasks and forwards
// them to the alert queue.
type QueuePublisher struct {
	queue QueueClient
}

func NewQueuePublisher(queue QueueClient) *QueuePublisher {
	if queue == nil {
		panic("alerts: queue cannot be nil")
	}
	return &QueuePublisher{queue: queue}
}

func (p *QueuePublisher) Handle(ctx context.Context, entry OutboxEntry) error {
	// Payloads are engine-written; a decode failure means a schema drift the
	// operator must resolve, so the row stays pending rather than publishing
	// garbage.
	var task escalation.AlertTask
	if err := json.Unmarshal(entry.Payload, &task); err != nil {
		return fmt.Errorf("alerts: decode outbox payload %s: %w", entry.ID, err)
	}
	return p.queue.Send(ctx, task)
}
