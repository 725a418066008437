package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Dan9191/ledger-service/internal/forecast"
	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/sirupsen/logrus"
)

// EntryInput is a validated-at-the-edge expense or income submission
type EntryInput struct {
	LedgerID     int64
	Amount       float64
	Date         *time.Time
	Description  string
	Frequency    string
	EndDate      *time.Time
	FromLedgerID *int64 // income only
}

// Entry is what a submission stored
type Entry struct {
	Transaction *models.Transaction `json:"transaction"`
	Linked      *models.Transaction `json:"linked_expense,omitempty"`
	Recurring   *models.Recurring   `json:"recurring,omitempty"`
}

// RecordExpense posts a debit and, when a frequency is given, schedules it to
// recur from its date
func (s *Service) RecordExpense(ctx context.Context, in EntryInput, now time.Time) (*Entry, error) {
	in.FromLedgerID = nil
	if err := s.validateEntry(ctx, in, now); err != nil {
		return nil, err
	}

	on := occurredAt(in, now)
	desc := describe(in.Description, "Expense")
	entry := &Entry{Transaction: &models.Transaction{
		LedgerID:    in.LedgerID,
		OccurredAt:  on,
		Type:        models.TypeDebit,
		Description: desc,
		Amount:      -math.Abs(in.Amount),
	}}
	if in.Frequency != "" {
		entry.Recurring = newRecurring(in, models.TypeDebit, desc, on)
	}

	if err := s.repo.RecordEntries(ctx, entry.Recurring, entry.Transaction); err != nil {
		return nil, fmt.Errorf("failed to record expense: %w", err)
	}
	s.log.WithFields(logrus.Fields{"ledger_id": in.LedgerID, "amount": entry.Transaction.Amount, "recurring": entry.Recurring != nil}).
		Info("Expense recorded")
	return entry, nil
}

// RecordIncome posts a credit. With a source ledger it also posts the matching
// debit there; with a frequency it schedules the income to recur.
func (s *Service) RecordIncome(ctx context.Context, in EntryInput, now time.Time) (*Entry, error) {
	if err := s.validateEntry(ctx, in, now); err != nil {
		return nil, err
	}

	on := occurredAt(in, now)
	desc := describe(in.Description, "Income")
	entry := &Entry{Transaction: &models.Transaction{
		LedgerID:     in.LedgerID,
		FromLedgerID: in.FromLedgerID,
		OccurredAt:   on,
		Type:         models.TypeCredit,
		Description:  desc,
		Amount:       math.Abs(in.Amount),
	}}
	if in.FromLedgerID != nil {
		entry.Linked = transferDebit(*in.FromLedgerID, in.Amount, on, in.Description)
	}
	if in.Frequency != "" {
		entry.Recurring = newRecurring(in, models.TypeCredit, desc, on)
	}

	transactions := []*models.Transaction{entry.Transaction}
	if entry.Linked != nil {
		transactions = append(transactions, entry.Linked)
	}
	if err := s.repo.RecordEntries(ctx, entry.Recurring, transactions...); err != nil {
		return nil, fmt.Errorf("failed to record income: %w", err)
	}
	s.log.WithFields(logrus.Fields{"ledger_id": in.LedgerID, "amount": entry.Transaction.Amount, "transfer": entry.Linked != nil, "recurring": entry.Recurring != nil}).
		Info("Income recorded")
	return entry, nil
}

// Transactions lists posted transactions
func (s *Service) Transactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	if f.LedgerID != nil {
		if err := s.requireLedger(ctx, "ledger_id", *f.LedgerID); err != nil {
			return nil, err
		}
	}
	transactions, err := s.repo.ListTransactions(ctx, f)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

func (s *Service) validateEntry(ctx context.Context, in EntryInput, now time.Time) error {
	verr := &ValidationError{Fields: map[string]string{}}
	if math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) || in.Amount <= 0 {
		verr.Fields["amount"] = "must be a number greater than 0"
	}
	if in.Frequency != "" && !forecast.Frequency(in.Frequency).Known() {
		verr.Fields["frequency"] = "must be one of daily, weekly, fortnightly, monthly, quarterly, yearly, annually"
	}
	if in.EndDate != nil && !in.EndDate.After(forecast.EndOfDay(now)) {
		verr.Fields["end_date"] = "must be a date after today"
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	if err := s.requireLedger(ctx, "ledger_id", in.LedgerID); err != nil {
		return err
	}
	if in.FromLedgerID != nil {
		if err := s.requireLedger(ctx, "from_ledger_id", *in.FromLedgerID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) requireLedger(ctx context.Context, field string, id int64) error {
	ok, err := s.repo.LedgerExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return invalid(field, fmt.Sprintf("ledger %d does not exist", id))
	}
	return nil
}

func occurredAt(in EntryInput, now time.Time) time.Time {
	if in.Date != nil {
		return *in.Date
	}
	return now
}

func describe(desc, fallback string) string {
	if desc == "" {
		return fallback
	}
	return desc
}

// transferDebit is the source-ledger side of a transfer
func transferDebit(fromLedgerID int64, amount float64, on time.Time, desc string) *models.Transaction {
	return &models.Transaction{
		LedgerID:    fromLedgerID,
		OccurredAt:  on,
		Type:        models.TypeDebit,
		Description: "Internal transfer from " + describe(desc, "another ledger"),
		Amount:      -math.Abs(amount),
	}
}

// newRecurring schedules a submission: its date is both the start and the
// last payment, and the next payment is one step later.
func newRecurring(in EntryInput, typ, desc string, on time.Time) *models.Recurring {
	freq := forecast.Frequency(in.Frequency).Normalize()
	start := forecast.StartOfDay(on)
	next := freq.Step(start)
	var end *time.Time
	if in.EndDate != nil {
		e := forecast.StartOfDay(*in.EndDate)
		end = &e
	}
	return &models.Recurring{
		LedgerID:        in.LedgerID,
		FromLedgerID:    in.FromLedgerID,
		Type:            typ,
		Description:     desc,
		Amount:          math.Abs(in.Amount),
		Frequency:       string(freq),
		StartDate:       start,
		EndDate:         end,
		LastPaymentDate: &start,
		NextPaymentDate: &next,
	}
}
