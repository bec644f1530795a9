package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/amirasaad/speibank/infra/repository/account"
	"github.com/amirasaad/speibank/infra/repository/contact"
	"github.com/amirasaad/speibank/infra/repository/movement"
	"github.com/amirasaad/speibank/infra/repository/pending"
	"github.com/amirasaad/speibank/pkg/domain"
	"github.com/amirasaad/speibank/pkg/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CompareAndSetBalance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := account.New(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "accounts" SET (.+) WHERE id = (.+) AND balance = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	err := repo.CompareAndSetBalance(context.Background(), id, decimal.NewFromInt(500), decimal.RequireFromString("394.20"))
	require.NoError(t, err)

	mock.ExpectExec(`UPDATE "accounts" SET (.+) WHERE id = (.+) AND balance = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.CompareAndSetBalance(context.Background(), id, decimal.NewFromInt(500), decimal.RequireFromString("394.20"))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Credit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := account.New(db)

	mock.ExpectQuery(`UPDATE "accounts" SET (.+) RETURNING "balance"`).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow("305.80"))
	got, err := repo.Credit(context.Background(), uuid.New(), decimal.RequireFromString("5.80"))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("305.80").Equal(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_GetByClabe_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := account.New(db)

	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE clabe = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := repo.GetByClabe(context.Background(), "646180218000000999")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := account.New(db)
	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "email", "clabe", "balance", "outbound_commission", "status"}).
		AddRow(id.String(), "ana@example.com", "646180218000000123", "1000.00", "0.00", "ACTIVE")
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE id = (.+)`).WillReturnRows(rows)

	got, err := repo.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "646180218000000123", got.Clabe)
	assert.True(t, decimal.NewFromInt(1000).Equal(got.Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := movement.New(db)

	mock.ExpectExec(`INSERT INTO "movements" (.+) VALUES (.+)`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	err := repo.Create(context.Background(), dto.MovementCreate{
		AccountID:    uuid.New(),
		Category:     "WIRE",
		Direction:    "OUTBOUND",
		Status:       "COMPLETED",
		Amount:       decimal.NewFromInt(100),
		Commission:   decimal.RequireFromString("5.80"),
		FinalAmount:  decimal.RequireFromString("105.80"),
		TrackingCode: "CEDI12345678",
		Metadata:     map[string]any{"gateway_tracking_id": "abc"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepository_TrackingCodeExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := movement.New(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "movements" WHERE tracking_code = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	ok, err := repo.TrackingCodeExists(context.Background(), "CEDI12345678")
	require.NoError(t, err)
	assert.True(t, ok)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "movements" WHERE tracking_code = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	ok, err = repo.TrackingCodeExists(context.Background(), "CEDI00000000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepository_Transition(t *testing.T) {
	db, mock := newMockDB(t)
	repo := movement.New(db)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "movements" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), "COMPLETED"))
	mock.ExpectExec(`UPDATE "movements" SET (.+) WHERE status = (.+) AND "id" = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	moved, err := repo.Transition(context.Background(), id, "COMPLETED", "REVERSED", map[string]any{"return_reason": "x"})
	require.NoError(t, err)
	assert.True(t, moved)

	mock.ExpectQuery(`SELECT \* FROM "movements" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), "REVERSED"))
	moved, err = repo.Transition(context.Background(), id, "COMPLETED", "REVERSED", nil)
	require.NoError(t, err)
	assert.False(t, moved)

	mock.ExpectQuery(`SELECT \* FROM "movements" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), "COMPLETED"))
	mock.ExpectExec(`UPDATE "movements" SET (.+) WHERE status = (.+) AND "id" = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	moved, err = repo.Transition(context.Background(), id, "COMPLETED", "REVERSED", nil)
	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := contact.New(db)

	mock.ExpectExec(`DELETE FROM "contacts" WHERE id = (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPendingRepository_ListByAccount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := pending.New(db)
	owner := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "pending_movements" WHERE account_id = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT \* FROM "pending_movements" WHERE account_id = (.+) ORDER BY created_at DESC LIMIT (.+) OFFSET (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "amount", "status"}).
			AddRow(uuid.New().String(), owner.String(), "50.00", "PENDING"))

	page, err := repo.ListByAccount(context.Background(), owner, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, page.Total)
	assert.Equal(t, 2, page.Page)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "PENDING", page.Items[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
