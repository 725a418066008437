package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Dan9191/ledger-service/internal/forecast"
	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ForecastRequest selects the window and ledgers to forecast. AsAt is the
// reference instant; it is never read from the clock here.
type ForecastRequest struct {
	AsAt            time.Time
	LookaheadMonths int        // 0 uses the configured default
	Until           *time.Time // overrides LookaheadMonths
	LookbackMonths  int        // 0 uses the configured default
	IncludeMonthly  bool
	LedgerID        *int64
}

// Forecast projects the balance of every requested ledger over the window
func (s *Service) Forecast(ctx context.Context, req ForecastRequest) (report *models.ForecastReport, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if report != nil {
			n = len(report.Ledgers)
		}
		s.metrics.ObserveForecast(start, n, err)
	}()

	lookahead := req.LookaheadMonths
	if lookahead == 0 {
		lookahead = s.config.LookaheadMonths
	}
	w, err := forecast.NewWindow(req.AsAt, lookahead, req.Until)
	if err != nil {
		field := "lookahead_months"
		if req.Until != nil {
			field = "until"
		}
		return nil, invalid(field, err.Error())
	}
	engine := s.engine
	if req.LookbackMonths > 0 {
		engine = forecast.NewEngine(req.LookbackMonths)
	}

	ledgers, err := s.repo.ListLedgers(ctx, req.LedgerID)
	if err != nil {
		return nil, err
	}
	snapshots := make([]forecast.Snapshot, 0, len(ledgers))
	for _, l := range ledgers {
		snap, err := s.loadSnapshot(ctx, l, w, engine.LookbackMonths())
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}

	results, err := forecastAll(engine, snapshots, w)
	if err != nil {
		return nil, err
	}

	report = &models.ForecastReport{
		AsAt:           w.AsAt.Format(time.RFC3339),
		Until:          w.Until.Format(time.RFC3339),
		LookbackMonths: engine.LookbackMonths(),
		Ledgers:        make([]models.LedgerForecast, 0, len(results)),
	}
	for i, res := range results {
		lf := toLedgerForecast(snapshots[i], res, req.IncludeMonthly)
		s.log.WithFields(logrus.Fields{
			"ledger_id": lf.LedgerID,
			"opening":   lf.OpeningBalance,
			"projected": lf.ProjectedBalance,
			"months":    len(res.Monthly),
		}).Debug("Ledger forecast computed")
		report.Ledgers = append(report.Ledgers, lf)
	}
	return report, nil
}

// forecastAll runs the engine for each snapshot concurrently. Results keep
// the order of snapshots.
func forecastAll(engine *forecast.Engine, snapshots []forecast.Snapshot, w forecast.Window) ([]forecast.Result, error) {
	results := make([]forecast.Result, len(snapshots))
	errs := make([]error, len(snapshots))
	var wg sync.WaitGroup
	for i := range snapshots {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := engine.Forecast(snapshots[i], w)
			if err != nil {
				errs[i] = fmt.Errorf("ledger %d: %w", snapshots[i].LedgerID, err)
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) loadSnapshot(ctx context.Context, l models.Ledger, w forecast.Window, lookbackMonths int) (forecast.Snapshot, error) {
	totals, err := s.repo.LedgerTotals(ctx, l.ID, w.AsAt)
	if err != nil {
		return forecast.Snapshot{}, err
	}
	recurrings, err := s.repo.ActiveRecurrings(ctx, l.ID, w.AsAt)
	if err != nil {
		return forecast.Snapshot{}, err
	}
	history, err := s.repo.TransactionsBetween(ctx, l.ID, forecast.HistoryStart(w.AsAt, lookbackMonths), w.AsAt)
	if err != nil {
		return forecast.Snapshot{}, err
	}

	snap := forecast.Snapshot{
		LedgerID:        l.ID,
		LedgerName:      l.Name,
		StartingBalance: l.StartingBalance,
		CreditSum:       totals.Credits,
		DebitSum:        totals.Debits,
		Recurrings:      make([]forecast.Recurring, 0, len(recurrings)),
		History:         make([]forecast.Transaction, 0, len(history)),
	}
	for _, r := range recurrings {
		fr := toForecastRecurring(r)
		if r.LedgerID != l.ID {
			// transfer funded by this ledger
			fr.Type = forecast.Debit
		}
		snap.Recurrings = append(snap.Recurrings, fr)
	}
	for _, t := range history {
		snap.History = append(snap.History, forecast.Transaction{
			OccurredAt: t.OccurredAt,
			Amount:     t.Amount,
			Type:       forecast.EntryType(t.Type),
		})
	}
	return snap, nil
}

func toForecastRecurring(r models.Recurring) forecast.Recurring {
	return forecast.Recurring{
		ID:              r.ID,
		Description:     r.Description,
		Amount:          r.Amount,
		Type:            forecast.EntryType(r.Type),
		Frequency:       forecast.Frequency(r.Frequency),
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		LastPaymentDate: r.LastPaymentDate,
		NextPaymentDate: r.NextPaymentDate,
	}
}

func toLedgerForecast(snap forecast.Snapshot, res forecast.Result, includeMonthly bool) models.LedgerForecast {
	lf := models.LedgerForecast{
		LedgerID:         snap.LedgerID,
		LedgerName:       snap.LedgerName,
		OpeningBalance:   res.Opening,
		ProjectedBalance: res.ProjectedBalance,
		ProjectedChange:  res.ProjectedChange,
	}
	if !includeMonthly {
		return lf
	}
	lf.Monthly = make([]models.MonthlyForecast, 0, len(res.Monthly))
	for _, b := range res.Monthly {
		lf.Monthly = append(lf.Monthly, models.MonthlyForecast{
			Month:           b.Month.String(),
			RecurringTotal:  b.RecurringDelta,
			HistoricalTotal: b.HistoricalDelta,
			ProjectedChange: b.CombinedDelta,
		})
	}
	return lf
}
