package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a referenced row does not exist
var ErrNotFound = errors.New("not found")

const (
	ledgerColumns      = `id, entity_id, name, type, starting_balance, created_at`
	transactionColumns = `id, ledger_id, from_ledger_id, recurring_id, occurred_at, type, description, amount, created_at`
	recurringColumns   = `id, ledger_id, from_ledger_id, type, description, amount, frequency, start_date, end_date, last_payment_date, next_payment_date, created_at`
)

// Repository provides database operations
type Repository struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewRepository initializes a new repository
func NewRepository(db *sqlx.DB, timeout time.Duration) *Repository {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Repository{db: db, timeout: timeout}
}

// Migrate creates the schema if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping checks database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.db.PingContext(ctx)
}

// ListBalances returns the balance of every ledger at asAt, grouped by
// business and entity
func (r *Repository) ListBalances(ctx context.Context, asAt time.Time) ([]models.LedgerBalance, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT b.id AS business_id, b.name AS business_name,
		       e.id AS entity_id, e.name AS entity_name,
		       l.id AS ledger_id, l.name AS ledger_name,
		       l.starting_balance + COALESCE(SUM(t.amount), 0) AS current_balance
		FROM businesses b
		JOIN entities e ON e.business_id = b.id
		JOIN ledgers l ON l.entity_id = e.id
		LEFT JOIN transactions t ON t.ledger_id = l.id AND t.occurred_at <= $1
		GROUP BY b.id, b.name, e.id, e.name, l.id, l.name, l.starting_balance
		ORDER BY b.id, e.id, l.id`
	var balances []models.LedgerBalance
	if err := r.db.SelectContext(ctx, &balances, query, asAt); err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	return balances, nil
}

// ListLedgers returns all ledgers, or only ledgerID when it is set
func (r *Repository) ListLedgers(ctx context.Context, ledgerID *int64) ([]models.Ledger, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + ledgerColumns + ` FROM ledgers`
	var args []any
	if ledgerID != nil {
		query += ` WHERE id = $1`
		args = append(args, *ledgerID)
	}
	query += ` ORDER BY id`

	var ledgers []models.Ledger
	if err := r.db.SelectContext(ctx, &ledgers, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list ledgers: %w", err)
	}
	if ledgerID != nil && len(ledgers) == 0 {
		return nil, fmt.Errorf("ledger %d: %w", *ledgerID, ErrNotFound)
	}
	return ledgers, nil
}

// LedgerExists reports whether a ledger with the given id exists
func (r *Repository) LedgerExists(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM ledgers WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check ledger: %w", err)
	}
	return exists, nil
}

// LedgerTotals sums credit and debit magnitudes posted up to asAt
func (r *Repository) LedgerTotals(ctx context.Context, ledgerID int64, asAt time.Time) (models.LedgerTotals, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'credit' THEN ABS(amount) ELSE 0 END), 0) AS credits,
		       COALESCE(SUM(CASE WHEN type = 'debit' THEN ABS(amount) ELSE 0 END), 0) AS debits
		FROM transactions
		WHERE ledger_id = $1 AND occurred_at <= $2`
	var totals models.LedgerTotals
	if err := r.db.GetContext(ctx, &totals, query, ledgerID, asAt); err != nil {
		return models.LedgerTotals{}, fmt.Errorf("failed to sum ledger %d: %w", ledgerID, err)
	}
	return totals, nil
}

// ActiveRecurrings returns the recurrings of a ledger that have no end date
// or end on or after asAt, including credit transfers the ledger funds
func (r *Repository) ActiveRecurrings(ctx context.Context, ledgerID int64, asAt time.Time) ([]models.Recurring, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + recurringColumns + `
		FROM recurrings
		WHERE (ledger_id = $1 OR (from_ledger_id = $1 AND type = 'credit'))
			AND (end_date IS NULL OR end_date >= $2::date)
		ORDER BY id`
	var recurrings []models.Recurring
	if err := r.db.SelectContext(ctx, &recurrings, query, ledgerID, asAt); err != nil {
		return nil, fmt.Errorf("failed to list recurrings for ledger %d: %w", ledgerID, err)
	}
	return recurrings, nil
}

// TransactionsBetween returns the transactions of a ledger in [from, to]
func (r *Repository) TransactionsBetween(ctx context.Context, ledgerID int64, from, to time.Time) ([]models.Transaction, error) {
	return r.ListTransactions(ctx, models.TransactionFilter{LedgerID: &ledgerID, From: &from, To: &to})
}

// ListTransactions returns transactions matching the filter, oldest first
func (r *Repository) ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var where []string
	var args []any
	if f.LedgerID != nil {
		args = append(args, *f.LedgerID)
		where = append(where, fmt.Sprintf("ledger_id = $%d", len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		where = append(where, fmt.Sprintf("occurred_at >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		where = append(where, fmt.Sprintf("occurred_at <= $%d", len(args)))
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY occurred_at, id`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var transactions []models.Transaction
	if err := r.db.SelectContext(ctx, &transactions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// RecordEntries stores a submission atomically: the optional recurring first,
// then every transaction. The first transaction is linked to the recurring.
func (r *Repository) RecordEntries(ctx context.Context, recurring *models.Recurring, transactions ...*models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if recurring != nil {
		if err := insertRecurring(ctx, tx, recurring); err != nil {
			return err
		}
		if len(transactions) > 0 {
			transactions[0].RecurringID = &recurring.ID
		}
	}
	for _, t := range transactions {
		if err := insertTransaction(ctx, tx, t); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DueRecurrings returns recurrings whose next payment is on or before now and
// not past their end date
func (r *Repository) DueRecurrings(ctx context.Context, now time.Time) ([]models.Recurring, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + recurringColumns + `
		FROM recurrings
		WHERE next_payment_date IS NOT NULL AND next_payment_date <= $1::date
		  AND (end_date IS NULL OR next_payment_date <= end_date)
		ORDER BY id`
	var recurrings []models.Recurring
	if err := r.db.SelectContext(ctx, &recurrings, query, now); err != nil {
		return nil, fmt.Errorf("failed to list due recurrings: %w", err)
	}
	return recurrings, nil
}

// PostOccurrence stores the transactions for one occurrence of a recurring
// and moves its payment dates forward
func (r *Repository) PostOccurrence(ctx context.Context, recurring *models.Recurring, paidOn, next time.Time, transactions ...*models.Transaction) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range transactions {
		if err := insertTransaction(ctx, tx, t); err != nil {
			return err
		}
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE recurrings SET last_payment_date = $2, next_payment_date = $3
		WHERE id = $1`, recurring.ID, paidOn, next)
	if err != nil {
		return fmt.Errorf("failed to advance recurring %d: %w", recurring.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("recurring %d: %w", recurring.ID, ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recurring %d: %w", recurring.ID, err)
	}
	recurring.LastPaymentDate = &paidOn
	recurring.NextPaymentDate = &next
	return nil
}

func insertTransaction(ctx context.Context, q sqlx.QueryerContext, t *models.Transaction) error {
	query := `
		INSERT INTO transactions (ledger_id, from_ledger_id, recurring_id, occurred_at, type, description, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := q.QueryRowxContext(ctx, query, t.LedgerID, t.FromLedgerID, t.RecurringID, t.OccurredAt, t.Type, t.Description, t.Amount).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return wrapWriteError("transaction", err)
	}
	return nil
}

func insertRecurring(ctx context.Context, q sqlx.QueryerContext, rec *models.Recurring) error {
	query := `
		INSERT INTO recurrings (ledger_id, from_ledger_id, type, description, amount, frequency,
		                        start_date, end_date, last_payment_date, next_payment_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP)
		RETURNING id, created_at`
	err := q.QueryRowxContext(ctx, query, rec.LedgerID, rec.FromLedgerID, rec.Type, rec.Description, rec.Amount,
		rec.Frequency, rec.StartDate, rec.EndDate, rec.LastPaymentDate, rec.NextPaymentDate).
		Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return wrapWriteError("recurring", err)
	}
	return nil
}

func wrapWriteError(what string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return fmt.Errorf("failed to create %s: ledger %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}
