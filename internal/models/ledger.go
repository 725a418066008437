package models

import "time"

// Business groups entities
type Business struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
	Type string `db:"type" json:"type"`
}

// Entity is a trading location of a business
type Entity struct {
	ID         int64  `db:"id" json:"id"`
	BusinessID int64  `db:"business_id" json:"business_id"`
	Name       string `db:"name" json:"name"`
	Type       string `db:"type" json:"type"`
	Location   string `db:"location" json:"location"`
}

// Ledger represents a balance tracked for an entity
type Ledger struct {
	ID              int64     `db:"id" json:"id"`
	EntityID        int64     `db:"entity_id" json:"entity_id"`
	Name            string    `db:"name" json:"name"`
	Type            string    `db:"type" json:"type"`
	StartingBalance float64   `db:"starting_balance" json:"starting_balance"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// LedgerBalance is one row of the balance overview
type LedgerBalance struct {
	BusinessID     int64   `db:"business_id"`
	BusinessName   string  `db:"business_name"`
	EntityID       int64   `db:"entity_id"`
	EntityName     string  `db:"entity_name"`
	LedgerID       int64   `db:"ledger_id"`
	LedgerName     string  `db:"ledger_name"`
	CurrentBalance float64 `db:"current_balance"`
}

// LedgerTotals holds the credit and debit magnitudes posted to a ledger
type LedgerTotals struct {
	Credits float64 `db:"credits"`
	Debits  float64 `db:"debits"`
}
