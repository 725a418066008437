package forecast

import (
	"fmt"
	"time"
)

// YearMonthFormat is the layout of a month key, e.g. "2025-03".
const YearMonthFormat = "2006-01"

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Next returns the month after ym.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Before reports whether ym is strictly earlier than o.
func (ym YearMonth) Before(o YearMonth) bool {
	return ym.Year < o.Year || (ym.Year == o.Year && ym.Month < o.Month)
}

func (ym YearMonth) String() string { return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)) }

// MonthsBetween returns every calendar month from from's month to to's month,
// both included, in order. It is empty when to is before from.
func MonthsBetween(from, to time.Time) []YearMonth {
	first, last := MonthOf(from), MonthOf(to)
	var months []YearMonth
	for ym := first; !last.Before(ym); ym = ym.Next() {
		months = append(months, ym)
	}
	return months
}

// Series holds one signed value per month of a fixed, ordered set of months.
// Every month starts at zero.
type Series struct {
	months []YearMonth
	values []float64
	index  map[YearMonth]int
}

// NewSeries returns a zeroed series over months.
func NewSeries(months []YearMonth) Series {
	s := Series{
		months: months,
		values: make([]float64, len(months)),
		index:  make(map[YearMonth]int, len(months)),
	}
	for i, ym := range months {
		s.index[ym] = i
	}
	return s
}

// Add accumulates v into month ym. It reports false, and drops v, when ym is
// not one of the series months.
func (s Series) Add(ym YearMonth, v float64) bool {
	i, ok := s.index[ym]
	if !ok {
		return false
	}
	s.values[i] += v
	return true
}

// Get returns the value of ym, zero when ym is outside the series.
func (s Series) Get(ym YearMonth) float64 {
	if i, ok := s.index[ym]; ok {
		return s.values[i]
	}
	return 0
}

// Months returns the ordered months of the series.
func (s Series) Months() []YearMonth { return s.months }

// Len is the number of months in the series.
func (s Series) Len() int { return len(s.months) }
