// Package memory is an in-process store with the same semantics as the
// Postgres repository. It backs demo mode and tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/Dan9191/ledger-service/internal/repository"
)

// Store keeps every table in memory
type Store struct {
	mu           sync.RWMutex
	businesses   []models.Business
	entities     []models.Entity
	ledgers      []models.Ledger
	transactions []models.Transaction
	recurrings   []models.Recurring
	nextID       int64
}

// New returns an empty store
func New() *Store { return &Store{} }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// SeedBusiness adds a business, assigning an id when it has none
func (s *Store) SeedBusiness(b models.Business) models.Business {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	s.businesses = append(s.businesses, b)
	return b
}

// SeedEntity adds an entity, assigning an id when it has none
func (s *Store) SeedEntity(e models.Entity) models.Entity {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.id()
	}
	s.entities = append(s.entities, e)
	return e
}

// SeedLedger adds a ledger, assigning an id when it has none
func (s *Store) SeedLedger(l models.Ledger) models.Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	s.ledgers = append(s.ledgers, l)
	return l
}

// SeedTransaction adds a posted transaction
func (s *Store) SeedTransaction(t models.Transaction) models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.id()
	}
	s.transactions = append(s.transactions, t)
	return t
}

// SeedRecurring adds a recurring
func (s *Store) SeedRecurring(r models.Recurring) models.Recurring {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.recurrings = append(s.recurrings, r)
	return r
}

// Recurrings returns a copy of every stored recurring
func (s *Store) Recurrings() []models.Recurring {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Recurring(nil), s.recurrings...)
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

func (s *Store) ListBalances(_ context.Context, asAt time.Time) ([]models.LedgerBalance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []models.LedgerBalance
	for _, b := range s.businesses {
		for _, e := range s.entities {
			if e.BusinessID != b.ID {
				continue
			}
			for _, l := range s.ledgers {
				if l.EntityID != e.ID {
					continue
				}
				balance := l.StartingBalance
				for _, t := range s.transactions {
					if t.LedgerID == l.ID && !t.OccurredAt.After(asAt) {
						balance += t.Amount
					}
				}
				rows = append(rows, models.LedgerBalance{
					BusinessID: b.ID, BusinessName: b.Name,
					EntityID: e.ID, EntityName: e.Name,
					LedgerID: l.ID, LedgerName: l.Name,
					CurrentBalance: balance,
				})
			}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.BusinessID != b.BusinessID {
			return a.BusinessID < b.BusinessID
		}
		if a.EntityID != b.EntityID {
			return a.EntityID < b.EntityID
		}
		return a.LedgerID < b.LedgerID
	})
	return rows, nil
}

func (s *Store) ListLedgers(_ context.Context, ledgerID *int64) ([]models.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ledgers []models.Ledger
	for _, l := range s.ledgers {
		if ledgerID == nil || l.ID == *ledgerID {
			ledgers = append(ledgers, l)
		}
	}
	if ledgerID != nil && len(ledgers) == 0 {
		return nil, fmt.Errorf("ledger %d: %w", *ledgerID, repository.ErrNotFound)
	}
	sort.Slice(ledgers, func(i, j int) bool { return ledgers[i].ID < ledgers[j].ID })
	return ledgers, nil
}

func (s *Store) LedgerExists(_ context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasLedger(id), nil
}

func (s *Store) hasLedger(id int64) bool {
	for _, l := range s.ledgers {
		if l.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) LedgerTotals(_ context.Context, ledgerID int64, asAt time.Time) (models.LedgerTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals models.LedgerTotals
	for _, t := range s.transactions {
		if t.LedgerID != ledgerID || t.OccurredAt.After(asAt) {
			continue
		}
		switch t.Type {
		case models.TypeCredit:
			totals.Credits += math.Abs(t.Amount)
		case models.TypeDebit:
			totals.Debits += math.Abs(t.Amount)
		}
	}
	return totals, nil
}

func (s *Store) ActiveRecurrings(_ context.Context, ledgerID int64, asAt time.Time) ([]models.Recurring, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := truncateDay(asAt)
	var active []models.Recurring
	for _, r := range s.recurrings {
		funds := r.FromLedgerID != nil && *r.FromLedgerID == ledgerID && r.Type == models.TypeCredit
		if (r.LedgerID == ledgerID || funds) && (r.EndDate == nil || !r.EndDate.Before(day)) {
			active = append(active, r)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (s *Store) TransactionsBetween(ctx context.Context, ledgerID int64, from, to time.Time) ([]models.Transaction, error) {
	return s.ListTransactions(ctx, models.TransactionFilter{LedgerID: &ledgerID, From: &from, To: &to})
}

func (s *Store) ListTransactions(_ context.Context, f models.TransactionFilter) ([]models.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Transaction
	for _, t := range s.transactions {
		if f.LedgerID != nil && t.LedgerID != *f.LedgerID {
			continue
		}
		if f.From != nil && t.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.OccurredAt.After(*f.To) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.Before(out[j].OccurredAt)
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) RecordEntries(_ context.Context, recurring *models.Recurring, transactions ...*models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if recurring != nil && !s.hasLedger(recurring.LedgerID) {
		return fmt.Errorf("failed to create recurring: ledger %w", repository.ErrNotFound)
	}
	for _, t := range transactions {
		if !s.hasLedger(t.LedgerID) {
			return fmt.Errorf("failed to create transaction: ledger %w", repository.ErrNotFound)
		}
	}

	now := time.Now()
	if recurring != nil {
		recurring.ID, recurring.CreatedAt = s.id(), now
		s.recurrings = append(s.recurrings, *recurring)
		if len(transactions) > 0 {
			transactions[0].RecurringID = &recurring.ID
		}
	}
	for _, t := range transactions {
		t.ID, t.CreatedAt = s.id(), now
		s.transactions = append(s.transactions, *t)
	}
	return nil
}

func (s *Store) DueRecurrings(_ context.Context, now time.Time) ([]models.Recurring, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := truncateDay(now)
	var due []models.Recurring
	for _, r := range s.recurrings {
		if r.NextPaymentDate == nil || r.NextPaymentDate.After(day) {
			continue
		}
		if r.EndDate != nil && r.NextPaymentDate.After(*r.EndDate) {
			continue
		}
		due = append(due, r)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (s *Store) PostOccurrence(_ context.Context, recurring *models.Recurring, paidOn, next time.Time, transactions ...*models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.recurrings {
		if s.recurrings[i].ID == recurring.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("recurring %d: %w", recurring.ID, repository.ErrNotFound)
	}
	now := time.Now()
	for _, t := range transactions {
		t.ID, t.CreatedAt = s.id(), now
		s.transactions = append(s.transactions, *t)
	}
	s.recurrings[idx].LastPaymentDate = &paidOn
	s.recurrings[idx].NextPaymentDate = &next
	recurring.LastPaymentDate = &paidOn
	recurring.NextPaymentDate = &next
	return nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
