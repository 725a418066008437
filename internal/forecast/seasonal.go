package forecast

import "time"

// Seasonal is a month-of-year average of organic (non-recurring) activity.
type Seasonal struct {
	// ByMonth holds the average organic delta per calendar month; only months
	// with samples are set.
	ByMonth map[time.Month]float64
	// Overall is the average over every sampled month, zero without history.
	Overall float64
	Samples int
}

// Estimate returns the expected organic delta for a calendar month, falling
// back to the overall average when that month was never sampled.
func (s Seasonal) Estimate(m time.Month) float64 {
	if v, ok := s.ByMonth[m]; ok {
		return v
	}
	return s.Overall
}

// HistoryStart is the first instant of the lookback used for asAt.
func HistoryStart(asAt time.Time, lookbackMonths int) time.Time {
	return StartOfMonth(asAt).AddDate(0, -lookbackMonths, 0)
}

// BuildSeasonal learns month-of-year averages from the transactions in
// [HistoryStart(asAt, lookback), asAt]. Each month's total has the recurring
// schedules' contribution to that month removed; a month counts as a sample
// when at least one transaction was posted in it.
func BuildSeasonal(history []Transaction, recurrings []Recurring, asAt time.Time, lookbackMonths int) (Seasonal, error) {
	from := HistoryStart(asAt, lookbackMonths)
	totals := NewSeries(MonthsBetween(from, asAt))
	posted := make(map[YearMonth]int, totals.Len())
	for _, tx := range history {
		if tx.OccurredAt.Before(from) || tx.OccurredAt.After(asAt) {
			continue
		}
		ym := MonthOf(tx.OccurredAt)
		if totals.Add(ym, tx.Amount) {
			posted[ym]++
		}
	}

	scheduled, err := projectRetrospective(recurrings, from, asAt)
	if err != nil {
		return Seasonal{}, err
	}

	sums := make(map[time.Month]float64, 12)
	counts := make(map[time.Month]int, 12)
	var overall float64
	var samples int
	for _, ym := range totals.Months() {
		if posted[ym] == 0 {
			continue
		}
		organic := totals.Get(ym) - scheduled.Get(ym)
		sums[ym.Month] += organic
		counts[ym.Month]++
		overall += organic
		samples++
	}

	s := Seasonal{ByMonth: make(map[time.Month]float64, len(sums)), Samples: samples}
	for m, sum := range sums {
		s.ByMonth[m] = sum / float64(counts[m])
	}
	if samples > 0 {
		s.Overall = overall / float64(samples)
	}
	return s, nil
}

// ProjectSeasonal fills one seasonal estimate per month of the forecast window.
func ProjectSeasonal(snap Snapshot, w Window, lookbackMonths int) (Series, error) {
	model, err := BuildSeasonal(snap.History, snap.Recurrings, w.AsAt, lookbackMonths)
	if err != nil {
		return Series{}, err
	}
	series := NewSeries(w.Months())
	for _, ym := range series.Months() {
		series.Add(ym, model.Estimate(ym.Month))
	}
	return series, nil
}
