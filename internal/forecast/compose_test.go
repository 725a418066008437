package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	months := MonthsBetween(day("2025-01-01"), day("2025-03-01"))
	recurring := NewSeries(months)
	recurring.Add(YearMonth{2025, time.January}, -100)
	recurring.Add(YearMonth{2025, time.March}, -50)
	// historical series only knows about February
	historical := NewSeries([]YearMonth{{2025, time.February}})
	historical.Add(YearMonth{2025, time.February}, 25.5)

	got := Compose(1000, recurring, historical, months)
	require.Len(t, got.Monthly, 3)
	assert.Equal(t, MonthBucket{Month: YearMonth{2025, time.January}, RecurringDelta: -100, CombinedDelta: -100}, got.Monthly[0])
	assert.Equal(t, MonthBucket{Month: YearMonth{2025, time.February}, HistoricalDelta: 25.5, CombinedDelta: 25.5}, got.Monthly[1])
	assert.Equal(t, MonthBucket{Month: YearMonth{2025, time.March}, RecurringDelta: -50, CombinedDelta: -50}, got.Monthly[2])
	assert.Equal(t, 1000.0, got.Opening)
	assert.Equal(t, -124.5, got.ProjectedChange)
	assert.Equal(t, 875.5, got.ProjectedBalance)
}

func TestComposeAccumulatesUnrounded(t *testing.T) {
	months := MonthsBetween(day("2025-01-01"), day("2025-03-01"))
	historical := NewSeries(months)
	for _, ym := range months {
		historical.Add(ym, 0.004)
	}

	got := Compose(10, NewSeries(months), historical, months)
	for _, b := range got.Monthly {
		assert.Zero(t, b.CombinedDelta)
	}
	assert.Equal(t, 0.01, got.ProjectedChange)
	assert.Equal(t, 10.01, got.ProjectedBalance)
}

func TestComposeEmptyWindow(t *testing.T) {
	got := Compose(42, Series{}, Series{}, nil)
	assert.Empty(t, got.Monthly)
	assert.Equal(t, 42.0, got.ProjectedBalance)
	assert.Zero(t, got.ProjectedChange)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.24, Round(1.235))
	assert.Equal(t, -1.24, Round(-1.235))
	assert.Equal(t, 0.1, Round(0.1))
	assert.Equal(t, 1300.0, Round(1300))
}
