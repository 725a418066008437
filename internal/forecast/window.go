package forecast

import (
	"fmt"
	"time"
)

const (
	DefaultLookaheadMonths = 3
	MaxLookaheadMonths     = 36
	DefaultLookbackMonths  = 12
)

// Window is the span a forecast covers. Both ends are normalized to the last
// instant of their day.
type Window struct {
	AsAt  time.Time
	Until time.Time
}

// NewWindow builds a window from a reference instant. A non-nil until is used
// as the horizon; otherwise the horizon is the end of the lookahead-th whole
// calendar month counted from the start of asAt's month.
func NewWindow(asAt time.Time, lookaheadMonths int, until *time.Time) (Window, error) {
	w := Window{AsAt: EndOfDay(asAt)}
	if until != nil {
		w.Until = EndOfDay(*until)
		if w.Until.Before(w.AsAt) {
			return Window{}, fmt.Errorf("horizon %s is before as-at %s", w.Until.Format(time.DateOnly), w.AsAt.Format(time.DateOnly))
		}
		return w, nil
	}
	if lookaheadMonths < 1 || lookaheadMonths > MaxLookaheadMonths {
		return Window{}, fmt.Errorf("lookahead months must be between 1 and %d, got %d", MaxLookaheadMonths, lookaheadMonths)
	}
	w.Until = StartOfMonth(w.AsAt).AddDate(0, lookaheadMonths, 0).Add(-time.Nanosecond)
	return w, nil
}

// Months returns every month from AsAt's month to Until's month, inclusive.
func (w Window) Months() []YearMonth { return MonthsBetween(w.AsAt, w.Until) }

// EndOfDay returns the last nanosecond of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}
