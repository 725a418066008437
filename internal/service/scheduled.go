package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/ledger-service/internal/forecast"
	"github.com/Dan9191/ledger-service/internal/models"
	"github.com/sirupsen/logrus"
)

// PostDueRecurrings turns every recurring occurrence due on or before now into
// posted transactions and advances the recurring's payment dates. A recurring
// that fails is logged and skipped; the others are still posted.
func (s *Service) PostDueRecurrings(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.DueRecurrings(ctx, now)
	if err != nil {
		return 0, err
	}

	today := forecast.EndOfDay(now)
	posted := 0
	var errs []error
	for i := range due {
		n, err := s.postRecurring(ctx, &due[i], today)
		posted += n
		if err != nil {
			s.log.Errorf("Failed to post recurring %d: %v", due[i].ID, err)
			errs = append(errs, err)
		}
	}
	if posted > 0 {
		s.log.Infof("Posted %d recurring occurrences from %d schedules", posted, len(due))
	}
	return posted, errors.Join(errs...)
}

func (s *Service) postRecurring(ctx context.Context, rec *models.Recurring, today time.Time) (int, error) {
	r := toForecastRecurring(*rec)
	amount, err := r.SignedAmount()
	if err != nil {
		return 0, err
	}

	posted := 0
	for i := 0; i < forecast.MaxSteps && rec.NextPaymentDate != nil; i++ {
		on := *rec.NextPaymentDate
		if on.After(today) || (rec.EndDate != nil && on.After(*rec.EndDate)) {
			break
		}
		transactions := []*models.Transaction{{
			LedgerID:     rec.LedgerID,
			FromLedgerID: rec.FromLedgerID,
			RecurringID:  &rec.ID,
			OccurredAt:   on,
			Type:         rec.Type,
			Description:  rec.Description,
			Amount:       amount,
		}}
		if rec.FromLedgerID != nil && rec.Type == models.TypeCredit {
			linked := transferDebit(*rec.FromLedgerID, rec.Amount, on, rec.Description)
			linked.RecurringID = &rec.ID
			transactions = append(transactions, linked)
		}
		next := r.Frequency.Step(on)
		if err := s.repo.PostOccurrence(ctx, rec, on, next, transactions...); err != nil {
			return posted, fmt.Errorf("recurring %d on %s: %w", rec.ID, on.Format(time.DateOnly), err)
		}
		s.metrics.RecurringPosted.WithLabelValues(rec.Type).Inc()
		posted++
	}
	return posted, nil
}

// LowBalanceAlerts forecasts every ledger from now and emails an alert for
// each one projected to end below the configured threshold
func (s *Service) LowBalanceAlerts(ctx context.Context, now time.Time) (int, error) {
	if s.notifier == nil || s.config.AlertEmail == "" {
		s.log.Debug("Low balance alerts disabled")
		return 0, nil
	}

	report, err := s.Forecast(ctx, ForecastRequest{AsAt: now, IncludeMonthly: true})
	if err != nil {
		return 0, err
	}

	threshold := s.config.LowBalanceThreshold
	sent := 0
	var errs []error
	for _, lf := range report.Ledgers {
		if lf.ProjectedBalance >= threshold {
			continue
		}
		if err := s.notifier.SendLowBalanceAlert(s.config.AlertEmail, lf, threshold); err != nil {
			s.metrics.AlertsSent.WithLabelValues("error").Inc()
			errs = append(errs, fmt.Errorf("ledger %d: %w", lf.LedgerID, err))
			continue
		}
		s.metrics.AlertsSent.WithLabelValues("sent").Inc()
		s.log.WithFields(logrus.Fields{"ledger_id": lf.LedgerID, "projected": lf.ProjectedBalance}).Warn("Low balance projected")
		sent++
	}
	return sent, errors.Join(errs...)
}
