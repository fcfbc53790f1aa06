package accounts

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStoreGetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"user_id", "account_type", "emergency_preference",
		"guardian_phone", "guardian_name", "company_name",
		"consent_emergency_dispatch", "consent_company_escalation",
		"created_at", "updated_at",
	}).AddRow(
		"user-1", "minor", "guardian",
		"+15551234567", "Jordan Doe", "",
		false, false,
		now, now,
	)
	mock.ExpectQuery("SELECT user_id").WithArgs("user-1").WillReturnRows(rows)

	acct, err := store.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, TypeMinor, acct.AccountType)
	assert.Equal(t, PreferGuardian, acct.EmergencyPreference)
	assert.Equal(t, "+15551234567", acct.GuardianPhone)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetByUserIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := newPostgresStoreWithQuerier(mock)
	mock.ExpectQuery("SELECT user_id").WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}))

	_, err = store.GetByUserID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestInMemoryStore(t *testing.T) {
	store := NewInMemoryStore()
	store.Put(&Account{ID: "user-2", AccountType: TypeCompany, CompanyName: "Acme Corp", ConsentCompanyEscalation: true})

	acct, err := store.GetByUserID(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", acct.CompanyName)

	_, err = store.GetByUserID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
