package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Dan9191/ledger-service/internal/config"
	"github.com/Dan9191/ledger-service/internal/forecast"
	"github.com/Dan9191/ledger-service/internal/metrics"
	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrValidation is matched by every *ValidationError
var ErrValidation = errors.New("validation failed")

// ValidationError lists the offending request fields
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Store is the persistence the service needs
type Store interface {
	Ping(ctx context.Context) error
	ListBalances(ctx context.Context, asAt time.Time) ([]models.LedgerBalance, error)
	ListLedgers(ctx context.Context, ledgerID *int64) ([]models.Ledger, error)
	LedgerExists(ctx context.Context, id int64) (bool, error)
	LedgerTotals(ctx context.Context, ledgerID int64, asAt time.Time) (models.LedgerTotals, error)
	ActiveRecurrings(ctx context.Context, ledgerID int64, asAt time.Time) ([]models.Recurring, error)
	TransactionsBetween(ctx context.Context, ledgerID int64, from, to time.Time) ([]models.Transaction, error)
	ListTransactions(ctx context.Context, f models.TransactionFilter) ([]models.Transaction, error)
	RecordEntries(ctx context.Context, recurring *models.Recurring, transactions ...*models.Transaction) error
	DueRecurrings(ctx context.Context, now time.Time) ([]models.Recurring, error)
	PostOccurrence(ctx context.Context, recurring *models.Recurring, paidOn, next time.Time, transactions ...*models.Transaction) error
}

// Notifier delivers low balance alerts
type Notifier interface {
	SendLowBalanceAlert(to string, f models.LedgerForecast, threshold float64) error
}

// Service handles business logic
type Service struct {
	repo     Store
	log      *logrus.Logger
	config   *config.Config
	engine   *forecast.Engine
	metrics  *metrics.Metrics
	notifier Notifier
}

// NewService initializes a new service. The notifier may be nil, in which
// case low balance alerts are skipped.
func NewService(repo Store, log *logrus.Logger, cfg *config.Config, m *metrics.Metrics, n Notifier) *Service {
	if m == nil {
		m = metrics.New()
	}
	return &Service{
		repo:     repo,
		log:      log,
		config:   cfg,
		engine:   forecast.NewEngine(cfg.LookbackMonths),
		metrics:  m,
		notifier: n,
	}
}

// Health checks the storage
func (s *Service) Health(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return fmt.Errorf("storage unavailable: %w", err)
	}
	return nil
}

// Balances returns every ledger's current balance at asAt grouped by
// business and entity
func (s *Service) Balances(ctx context.Context, asAt time.Time) (*models.BalanceReport, error) {
	rows, err := s.repo.ListBalances(ctx, asAt)
	if err != nil {
		return nil, err
	}

	report := &models.BalanceReport{AsOf: asAt.Format(time.RFC3339), Data: []models.BusinessBalance{}}
	for _, row := range rows {
		if n := len(report.Data); n == 0 || report.Data[n-1].BusinessID != row.BusinessID {
			report.Data = append(report.Data, models.BusinessBalance{BusinessID: row.BusinessID, Business: row.BusinessName})
		}
		business := &report.Data[len(report.Data)-1]
		if n := len(business.Entities); n == 0 || business.Entities[n-1].EntityID != row.EntityID {
			business.Entities = append(business.Entities, models.EntityBalance{EntityID: row.EntityID, Entity: row.EntityName})
		}
		entity := &business.Entities[len(business.Entities)-1]
		entity.Ledgers = append(entity.Ledgers, models.LedgerCurrent{
			LedgerID:       row.LedgerID,
			Ledger:         row.LedgerName,
			CurrentBalance: forecast.Round(row.CurrentBalance),
		})
	}
	return report, nil
}
