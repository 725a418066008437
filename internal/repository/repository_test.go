package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/ledger-service/internal/models"
)

var (
	ledgerCols      = []string{"id", "entity_id", "name", "type", "starting_balance", "created_at"}
	recurringCols   = []string{"id", "ledger_id", "from_ledger_id", "type", "description", "amount", "frequency", "start_date", "end_date", "last_payment_date", "next_payment_date", "created_at"}
	transactionCols = []string{"id", "ledger_id", "from_ledger_id", "recurring_id", "occurred_at", "type", "description", "amount", "created_at"}
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mockDB.Close()
	})
	return NewRepository(sqlx.NewDb(mockDB, "postgres"), time.Second), mock
}

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestMigrate(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS businesses")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Migrate(context.Background()))
}

func TestListBalances(t *testing.T) {
	repo, mock := newMockRepo(t)
	asAt := date("2025-01-15")
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN transactions t ON t.ledger_id = l.id AND t.occurred_at <= $1")).
		WithArgs(asAt).
		WillReturnRows(sqlmock.NewRows([]string{"business_id", "business_name", "entity_id", "entity_name", "ledger_id", "ledger_name", "current_balance"}).
			AddRow(int64(1), "Joes Flooring", int64(1), "Joes Flooring Moonta", int64(1), "Joes Flooring Moonta Revenue", 1300.0).
			AddRow(int64(1), "Joes Flooring", int64(1), "Joes Flooring Moonta", int64(2), "Joes Flooring Moonta Payroll", 15000.0))

	got, err := repo.ListBalances(context.Background(), asAt)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Joes Flooring Moonta Revenue", got[0].LedgerName)
	assert.Equal(t, 1300.0, got[0].CurrentBalance)
}

func TestListLedgers(t *testing.T) {
	created := date("2025-01-01")

	t.Run("all", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(regexp.QuoteMeta("FROM ledgers ORDER BY id")).
			WillReturnRows(sqlmock.NewRows(ledgerCols).
				AddRow(int64(1), int64(1), "Revenue", "revenue", 1000.0, created).
				AddRow(int64(2), int64(1), "Payroll", "payroll", 2000.0, created))

		got, err := repo.ListLedgers(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, 2000.0, got[1].StartingBalance)
	})

	t.Run("by id", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := int64(2)
		mock.ExpectQuery(regexp.QuoteMeta("FROM ledgers WHERE id = $1 ORDER BY id")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(ledgerCols).AddRow(id, int64(1), "Payroll", "payroll", 2000.0, created))

		got, err := repo.ListLedgers(context.Background(), &id)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Payroll", got[0].Name)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		id := int64(99)
		mock.ExpectQuery(regexp.QuoteMeta("FROM ledgers WHERE id = $1")).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(ledgerCols))

		_, err := repo.ListLedgers(context.Background(), &id)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestLedgerExists(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM ledgers WHERE id = $1)")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.LedgerExists(context.Background(), 3)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLedgerTotals(t *testing.T) {
	repo, mock := newMockRepo(t)
	asAt := date("2025-01-15")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ledger_id = $1 AND occurred_at <= $2")).
		WithArgs(int64(1), asAt).
		WillReturnRows(sqlmock.NewRows([]string{"credits", "debits"}).AddRow(500.0, 200.0))

	got, err := repo.LedgerTotals(context.Background(), 1, asAt)
	require.NoError(t, err)
	assert.Equal(t, models.LedgerTotals{Credits: 500, Debits: 200}, got)
}

func TestActiveRecurrings(t *testing.T) {
	repo, mock := newMockRepo(t)
	asAt := date("2025-01-15")
	next := date("2025-01-31")
	mock.ExpectQuery(`\(ledger_id = \$1 OR \(from_ledger_id = \$1 AND type = 'credit'\)\)\s+AND \(end_date IS NULL OR end_date >= \$2::date\)`).
		WithArgs(int64(1), asAt).
		WillReturnRows(sqlmock.NewRows(recurringCols).
			AddRow(int64(7), int64(1), nil, "debit", "Rent", 100.0, "monthly", date("2024-01-31"), nil, date("2024-12-31"), next, asAt))

	got, err := repo.ActiveRecurrings(context.Background(), 1, asAt)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Rent", got[0].Description)
	assert.Nil(t, got[0].EndDate)
	assert.Nil(t, got[0].FromLedgerID)
	require.NotNil(t, got[0].NextPaymentDate)
	assert.Equal(t, next, *got[0].NextPaymentDate)
}

func TestListTransactionsFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	ledgerID := int64(4)
	from, to := date("2024-01-01"), date("2025-01-15")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE ledger_id = $1 AND occurred_at >= $2 AND occurred_at <= $3 ORDER BY occurred_at, id LIMIT $4")).
		WithArgs(ledgerID, from, to, 50).
		WillReturnRows(sqlmock.NewRows(transactionCols).
			AddRow(int64(1), ledgerID, nil, nil, date("2024-03-02"), "credit", "Sale", 120.0, date("2024-03-02")))

	got, err := repo.ListTransactions(context.Background(), models.TransactionFilter{LedgerID: &ledgerID, From: &from, To: &to, Limit: 50})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 120.0, got[0].Amount)
}

func TestListTransactionsUnfiltered(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, ledger_id, from_ledger_id, recurring_id, occurred_at, type, description, amount, created_at FROM transactions ORDER BY occurred_at, id")).
		WillReturnRows(sqlmock.NewRows(transactionCols))

	got, err := repo.ListTransactions(context.Background(), models.TransactionFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordEntriesWithRecurring(t *testing.T) {
	repo, mock := newMockRepo(t)
	on := date("2025-01-31")
	next := date("2025-02-28")
	created := date("2025-01-15")
	rec := &models.Recurring{LedgerID: 1, Type: models.TypeDebit, Description: "Rent", Amount: 200, Frequency: "monthly", StartDate: on, LastPaymentDate: &on, NextPaymentDate: &next}
	txn := &models.Transaction{LedgerID: 1, OccurredAt: on, Type: models.TypeDebit, Description: "Rent", Amount: -200}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO recurrings")).
		WithArgs(int64(1), nil, "debit", "Rent", 200.0, "monthly", on, nil, on, next).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(11), created))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(int64(1), nil, int64(11), on, "debit", "Rent", -200.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(21), created))
	mock.ExpectCommit()

	require.NoError(t, repo.RecordEntries(context.Background(), rec, txn))
	assert.Equal(t, int64(11), rec.ID)
	assert.Equal(t, int64(21), txn.ID)
	require.NotNil(t, txn.RecurringID)
	assert.Equal(t, int64(11), *txn.RecurringID)
}

func TestRecordEntriesRollsBackOnMissingLedger(t *testing.T) {
	repo, mock := newMockRepo(t)
	txn := &models.Transaction{LedgerID: 1, OccurredAt: date("2025-01-14"), Type: models.TypeCredit, Amount: 10}
	transfer := &models.Transaction{LedgerID: 404, OccurredAt: date("2025-01-14"), Type: models.TypeDebit, Amount: -10}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), date("2025-01-15")))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	err := repo.RecordEntries(context.Background(), nil, txn, transfer)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDueRecurrings(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := date("2025-03-01")
	mock.ExpectQuery(regexp.QuoteMeta("next_payment_date <= $1::date")).
		WithArgs(now).
		WillReturnRows(sqlmock.NewRows(recurringCols).
			AddRow(int64(7), int64(1), nil, "credit", "Retainer", 900.0, "monthly", date("2025-01-01"), nil, date("2025-01-01"), date("2025-02-01"), now))

	got, err := repo.DueRecurrings(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Retainer", got[0].Description)
}

func TestPostOccurrence(t *testing.T) {
	repo, mock := newMockRepo(t)
	paid, next := date("2025-02-01"), date("2025-03-01")
	rec := &models.Recurring{ID: 7, LedgerID: 1}
	txn := &models.Transaction{LedgerID: 1, RecurringID: &rec.ID, OccurredAt: paid, Type: models.TypeCredit, Description: "Retainer", Amount: 900}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(int64(1), nil, int64(7), paid, "credit", "Retainer", 900.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(30), paid))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE recurrings SET last_payment_date = $2, next_payment_date = $3")).
		WithArgs(int64(7), paid, next).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.PostOccurrence(context.Background(), rec, paid, next, txn))
	assert.Equal(t, int64(30), txn.ID)
	assert.Equal(t, next, *rec.NextPaymentDate)
	assert.Equal(t, paid, *rec.LastPaymentDate)
}

func TestPostOccurrenceMissingRecurring(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE recurrings")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.PostOccurrence(context.Background(), &models.Recurring{ID: 8}, date("2025-02-01"), date("2025-03-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}
