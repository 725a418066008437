package models

import "time"

// Recurring represents a scheduled debit or credit that has not been posted
// yet. Amount is stored as a magnitude; Type gives the direction.
type Recurring struct {
	ID              int64      `db:"id" json:"id"`
	LedgerID        int64      `db:"ledger_id" json:"ledger_id"`
	FromLedgerID    *int64     `db:"from_ledger_id" json:"from_ledger_id,omitempty"`
	Type            string     `db:"type" json:"type"`
	Description     string     `db:"description" json:"description"`
	Amount          float64    `db:"amount" json:"amount"`
	Frequency       string     `db:"frequency" json:"frequency"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         *time.Time `db:"end_date" json:"end_date,omitempty"`
	LastPaymentDate *time.Time `db:"last_payment_date" json:"last_payment_date,omitempty"`
	NextPaymentDate *time.Time `db:"next_payment_date" json:"next_payment_date,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}
