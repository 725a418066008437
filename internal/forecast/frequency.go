package forecast

import (
	"strings"
	"time"
)

// Frequency names how often a recurring debit or credit repeats.
type Frequency string

const (
	Daily       Frequency = "daily"
	Weekly      Frequency = "weekly"
	Fortnightly Frequency = "fortnightly"
	Monthly     Frequency = "monthly"
	Quarterly   Frequency = "quarterly"
	Yearly      Frequency = "yearly"
	Annually    Frequency = "annually"
)

// Frequencies lists every frequency accepted at submission time.
var Frequencies = []Frequency{Daily, Weekly, Fortnightly, Monthly, Quarterly, Yearly, Annually}

type stepFunc func(time.Time) time.Time

// steps maps a frequency to the way it advances a date.
// Anything missing from the table steps monthly.
var steps = map[Frequency]stepFunc{
	Daily:       func(t time.Time) time.Time { return t.AddDate(0, 0, 1) },
	Weekly:      func(t time.Time) time.Time { return t.AddDate(0, 0, 7) },
	Fortnightly: func(t time.Time) time.Time { return t.AddDate(0, 0, 14) },
	Monthly:     func(t time.Time) time.Time { return addMonthsNoOverflow(t, 1) },
	Quarterly:   func(t time.Time) time.Time { return addMonthsNoOverflow(t, 3) },
	Yearly:      func(t time.Time) time.Time { return addMonthsNoOverflow(t, 12) },
	Annually:    func(t time.Time) time.Time { return addMonthsNoOverflow(t, 12) },
}

var defaultStep = steps[Monthly]

// Normalize lower-cases and trims a frequency name.
func (f Frequency) Normalize() Frequency {
	return Frequency(strings.ToLower(strings.TrimSpace(string(f))))
}

// Known reports whether f has its own entry in the step table.
func (f Frequency) Known() bool {
	_, ok := steps[f.Normalize()]
	return ok
}

// Step advances t by one unit of f. Unknown frequencies step monthly.
func (f Frequency) Step(t time.Time) time.Time {
	if step, ok := steps[f.Normalize()]; ok {
		return step(t)
	}
	return defaultStep(t)
}

// Step advances t by one unit of f.
func Step(t time.Time, f Frequency) time.Time { return f.Step(t) }

// addMonthsNoOverflow adds n calendar months keeping the time of day, clamping
// the day to the last day of the target month. Jan 31 + 1 month is Feb 28 (or 29).
func addMonthsNoOverflow(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
