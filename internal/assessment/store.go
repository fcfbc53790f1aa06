package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mindhaven/wellness-platform/internal/risk"
)

// Store defines the interface for assessment persistence.
type Store interface {
	Insert(ctx context.Context, a *Assessment) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Assessment, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore persists assessments in Postgres.
type PostgresStore struct {
	pool querier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("assessment: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithQuerier(q querier) *PostgresStore {
	return &PostgresStore{pool: q}
}

func (s *PostgresStore) Insert(ctx context.Context, a *Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	signals, err := json.Marshal(a.Signals)
	if err != nil {
		return fmt.Errorf("assessment: encode signals: %w", err)
	}

	query := `
		INSERT INTO assessments (id, user_id, checkin_id, score, tier, signals, sentiment, ai_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.pool.Exec(ctx, query,
		a.ID, a.UserID, a.CheckinID, a.Score, string(a.Tier), signals, a.Sentiment, a.AIUsed, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("assessment: insert assessment: %w", err)
	}
	return nil
}

// ListByUser returns the user's assessments, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string, limit int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, user_id, COALESCE(checkin_id, ''), score, tier, signals, COALESCE(sentiment, ''), ai_used, created_at
		FROM assessments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("assessment: query assessments: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var a Assessment
		var tier string
		var signals []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.CheckinID, &a.Score, &tier, &signals, &a.Sentiment, &a.AIUsed, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("assessment: scan assessment: %w", err)
		}
		a.Tier = risk.Tier(tier)
		if len(signals) > 0 {
			if err := json.Unmarshal(signals, &a.Signals); err != nil {
				return nil, fmt.Errorf("assessment: decode signals: %w", err)
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// InMemoryStore keeps assessments in memory for tests and local development.
type InMemoryStore struct {
	mu   sync.RWMutex
	byID map[string][]Assessment
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string][]Assessment)}
}

func (s *InMemoryStore) Insert(_ context.Context, a *Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	s.byID[a.UserID] = append([]Assessment{*a}, s.byID[a.UserID]...)
	s.mu.Unlock()
	return nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID string, limit int) ([]Assessment, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byID[userID]
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]Assessment, len(list))
	copy(out, list)
	return out, nil
}

var _ Store = (*PostgresStore)(nil)
var _ Store = (*InMemoryStore)(nil)
