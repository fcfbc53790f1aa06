package accounts

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store defines the interface for account lookup
type Store interface {
	GetByUserID(ctx context.Context, userID string) (*Account, error)
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads account records from Postgres.
type PostgresStore struct {
	pool rowQuerier
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("accounts: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func newPostgresStoreWithQuerier(q rowQuerier) *PostgresStore {
	return &PostgresStore{pool: q}
}

func (s *PostgresStore) GetByUserID(ctx context.Context, userID string) (*Account, error) {
	query := `
		SELECT user_id, account_type, emergency_preference,
		       COALESCE(guardian_phone, ''), COALESCE(guardian_name, ''),
		       COALESCE(company_name, ''),
		       consent_emergency_dispatch, consent_company_escalation,
		       created_at, updated_at
		FROM accounts
		WHERE user_id = $1
	`

	var a Account
	err := s.pool.QueryRow(ctx, query, userID).Scan(
		&a.ID, &a.AccountType, &a.EmergencyPreference,
		&a.GuardianPhone, &a.GuardianName, &a.CompanyName,
		&a.ConsentEmergencyDispatch, &a.ConsentCompanyEscalation,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("accounts: query account: %w", err)
	}
	return &a, nil
}

// InMemoryStore is a stub implementation of Store for tests and local dev.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{accounts: make(map[string]*Account)}
}

// Put stores an account keyed by user id.
func (s *InMemoryStore) Put(a *Account) {
	s.mu.Lock()
	s.accounts[a.ID] = a
	s.mu.Unlock()
}

func (s *InMemoryStore) GetByUserID(ctx context.Context, userID string) (*Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	copied := *a
	return &copied, nil
}

var _ Store = (*PostgresStore)(nil)
var _ Store = (*InMemoryStore)(nil)
