package checkins

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines the interface for check-in persistence
type Store interface {
	Create(ctx context.Context, req *CreateCheckinRequest) (*Checkin, error)
	Recent(ctx context.Context, userID string, limit int) ([]Checkin, error)
	SetCrisisScore(ctx context.Context, checkinID string, score float64) error
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore persists check-ins in Postgres.
type PostgresStore struct {
	pool querier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("checkins: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithQuerier(q querier) *PostgresStore {
	return &PostgresStore{pool: q}
}

func (s *PostgresStore) Create(ctx context.Context, req *CreateCheckinRequest) (*Checkin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	checkin := &Checkin{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Mood:      req.Mood,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO checkins (id, user_id, mood, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := s.pool.Exec(ctx, query, checkin.ID, checkin.UserID, checkin.Mood, checkin.Note, checkin.CreatedAt); err != nil {
		return nil, fmt.Errorf("checkins: insert check-in: %w", err)
	}
	return checkin, nil
}

// Recent returns the user's latest check-ins, newest first.
func (s *PostgresStore) Recent(ctx context.Context, userID string, limit int) ([]Checkin, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
		SELECT id, user_id, mood, COALESCE(note, ''), crisis_score, created_at
		FROM checkins
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("checkins: query recent: %w", err)
	}
	defer rows.Close()

	var out []Checkin
	for rows.Next() {
		var c Checkin
		if err := rows.Scan(&c.ID, &c.UserID, &c.Mood, &c.Note, &c.CrisisScore, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("checkins: scan check-in: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetCrisisScore records the assessment score computed for a check-in.
func (s *PostgresStore) SetCrisisScore(ctx context.Context, checkinID string, score float64) error {
	query := `UPDATE checkins SET crisis_score = $2 WHERE id = $1`
	if _, err := s.pool.Exec(ctx, query, checkinID, score); err != nil {
		return fmt.Errorf("checkins: set crisis score: %w", err)
	}
	return nil
}

// InMemoryStore is a stub implementation of Store using in-memory storage
type InMemoryStore struct {
	mu       sync.RWMutex
	checkins map[string][]Checkin
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{checkins: make(map[string][]Checkin)}
}

func (s *InMemoryStore) Create(ctx context.Context, req *CreateCheckinRequest) (*Checkin, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	checkin := Checkin{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Mood:      req.Mood,
		Note:      req.Note,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.checkins[req.UserID] = append([]Checkin{checkin}, s.checkins[req.UserID]...)
	s.mu.Unlock()
	return &checkin, nil
}

func (s *InMemoryStore) Recent(ctx context.Context, userID string, limit int) ([]Checkin, error) {
	if limit <= 0 {
		limit = 5
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.checkins[userID]
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]Checkin, len(list))
	copy(out, list)
	return out, nil
}

func (s *InMemoryStore) SetCrisisScore(ctx context.Context, checkinID string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userID, list := range s.checkins {
		for i := range list {
			if list[i].ID == checkinID {
				sc := score
				s.checkins[userID][i].CrisisScore = &sc
				return nil
			}
		}
	}
	return nil
}

var _ Store = (*PostgresStore)(nil)
var _ Store = (*InMemoryStore)(nil)
