package forecast

import "github.com/shopspring/decimal"

// DisplayPlaces is the number of decimals amounts are rounded to on output.
const DisplayPlaces = 2

// MonthBucket is the forecast for a single month.
type MonthBucket struct {
	Month           YearMonth
	RecurringDelta  float64
	HistoricalDelta float64
	CombinedDelta   float64
}

// Result is the composed forecast for one ledger.
type Result struct {
	Opening          float64
	ProjectedChange  float64
	ProjectedBalance float64
	Monthly          []MonthBucket
}

// Compose merges the recurring and historical series over months and
// accumulates the projected balance. Months missing from a series count as
// zero. Totals are summed unrounded; only the returned figures are rounded.
func Compose(opening float64, recurring, historical Series, months []YearMonth) Result {
	res := Result{Monthly: make([]MonthBucket, 0, len(months))}
	var change float64
	for _, ym := range months {
		rec, hist := recurring.Get(ym), historical.Get(ym)
		combined := rec + hist
		change += combined
		res.Monthly = append(res.Monthly, MonthBucket{
			Month:           ym,
			RecurringDelta:  Round(rec),
			HistoricalDelta: Round(hist),
			CombinedDelta:   Round(combined),
		})
	}
	res.Opening = Round(opening)
	res.ProjectedChange = Round(change)
	res.ProjectedBalance = Round(opening + change)
	return res
}

// Round rounds v half away from zero to DisplayPlaces decimals.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(DisplayPlaces).InexactFloat64()
}
