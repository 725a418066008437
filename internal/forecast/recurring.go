package forecast

import "time"

// ProjectRecurring sums the occurrences of every recurring that fall in
// [from, to] into a series covering each month of that span. Anchors are
// resolved against asAt.
func ProjectRecurring(recurrings []Recurring, asAt, from, to time.Time) (Series, error) {
	return projectRecurring(recurrings, from, to, func(r Recurring) time.Time { return r.Anchor(asAt) })
}

// projectRetrospective replays recurring schedules from their start date so
// the contribution they made to past months can be removed from history.
func projectRetrospective(recurrings []Recurring, from, to time.Time) (Series, error) {
	return projectRecurring(recurrings, from, to, func(r Recurring) time.Time { return r.StartDate })
}

func projectRecurring(recurrings []Recurring, from, to time.Time, anchor func(Recurring) time.Time) (Series, error) {
	series := NewSeries(MonthsBetween(from, to))
	for _, r := range recurrings {
		amount, err := r.SignedAmount()
		if err != nil {
			return Series{}, err
		}
		for on := range Occurrences(anchor(r), r.Frequency, from, to, r.EndDate) {
			series.Add(MonthOf(on), amount)
		}
	}
	return series, nil
}
