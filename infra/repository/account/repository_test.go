package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	domain "github.com/revobank/revobank/pkg/domain/account"
	"github.com/revobank/revobank/pkg/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDb.Close() }) //nolint: errcheck
	dialector := postgres.New(postgres.Config{
		Conn:       mockDb,
		DriverName: "postgres",
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	return db, mock
}

func accountRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "account_number", "account_type", "balance", "currency",
		"status", "user_id", "created_at", "updated_at",
	}).AddRow(1, "3812345678901234", "savings", int64(25_000_000), "IDR", "active", 7, now, now)
}

func TestGet_MapsRowToDomain(t *testing.T) {
	db, mock := newMockDB(t)
	repo := accountRepository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE "accounts"."id" = (.+)`).
		WillReturnRows(accountRows())

	a, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "3812345678901234", a.Number)
	assert.Equal(t, domain.TypeSavings, a.Type)
	assert.Equal(t, int64(25_000_000), a.Balance.Amount())
	assert.Equal(t, uint(7), a.UserID)
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := accountRepository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "accounts"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestGetForUpdate_LocksWithNowait(t *testing.T) {
	db, mock := newMockDB(t)
	repo := accountRepository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE (.+) FOR UPDATE NOWAIT`).
		WillReturnRows(accountRows())

	a, err := repo.GetForUpdate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetForUpdate_ContendedRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := accountRepository{db: db}

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE (.+) FOR UPDATE NOWAIT`).
		WillReturnError(errors.New(`ERROR: could not obtain lock on row in relation "accounts" (SQLSTATE 55P03)`))

	_, err := repo.GetForUpdate(context.Background(), 1)
	assert.ErrorIs(t, err, repository.ErrLockNotAvailable)
}

func TestUpdateBalance_NoRowsAffected(t *testing.T) {
	db, mock := newMockDB(t)
	repo := accountRepository{db: db}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "accounts" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := repo.UpdateBalance(context.Background(), 42, 1000)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
