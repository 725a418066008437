package models

import "time"

const (
	TypeDebit  = "debit"
	TypeCredit = "credit"
)

// Transaction represents a posted debit or credit. Amount is signed:
// credits are positive and debits negative.
type Transaction struct {
	ID           int64     `db:"id" json:"id"`
	LedgerID     int64     `db:"ledger_id" json:"ledger_id"`
	FromLedgerID *int64    `db:"from_ledger_id" json:"from_ledger_id,omitempty"`
	RecurringID  *int64    `db:"recurring_id" json:"recurring_id,omitempty"`
	OccurredAt   time.Time `db:"occurred_at" json:"occurred_at"`
	Type         string    `db:"type" json:"type"`
	Description  string    `db:"description" json:"description"`
	Amount       float64   `db:"amount" json:"amount"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TransactionFilter narrows a transaction listing
type TransactionFilter struct {
	LedgerID *int64
	From     *time.Time
	To       *time.Time
	Limit    int
}
