package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecurringAnchor(t *testing.T) {
	asAt := EndOfDay(day("2025-01-15"))
	t.Run("next payment date wins", func(t *testing.T) {
		r := Recurring{Frequency: Monthly, NextPaymentDate: ptr(day("2025-02-03")), LastPaymentDate: ptr(day("2024-12-01"))}
		assert.Equal(t, day("2025-02-03"), r.Anchor(asAt))
	})
	t.Run("one step after last payment", func(t *testing.T) {
		r := Recurring{Frequency: Monthly, LastPaymentDate: ptr(day("2024-12-31"))}
		assert.Equal(t, day("2025-01-31"), r.Anchor(asAt))
	})
	t.Run("falls back to as-at", func(t *testing.T) {
		r := Recurring{Frequency: Weekly}
		assert.Equal(t, asAt, r.Anchor(asAt))
	})
}

func TestRecurringActive(t *testing.T) {
	asAt := EndOfDay(day("2025-01-15"))
	assert.True(t, Recurring{}.Active(asAt))
	assert.True(t, Recurring{EndDate: ptr(day("2025-01-15"))}.Active(asAt))
	assert.True(t, Recurring{EndDate: ptr(day("2025-06-30"))}.Active(asAt))
	assert.False(t, Recurring{EndDate: ptr(day("2025-01-14"))}.Active(asAt))

	rs := []Recurring{
		{ID: 1},
		{ID: 2, EndDate: ptr(day("2024-12-31"))},
		{ID: 3, EndDate: ptr(day("2025-12-31"))},
	}
	active := ActiveRecurrings(rs, asAt)
	require.Len(t, active, 2)
	assert.Equal(t, int64(1), active[0].ID)
	assert.Equal(t, int64(3), active[1].ID)
}

func TestSignedAmount(t *testing.T) {
	v, err := Recurring{Type: Debit, Amount: 100}.SignedAmount()
	require.NoError(t, err)
	assert.Equal(t, -100.0, v)

	v, err = Recurring{Type: Debit, Amount: -100}.SignedAmount()
	require.NoError(t, err)
	assert.Equal(t, -100.0, v)

	v, err = Recurring{Type: Credit, Amount: -42.5}.SignedAmount()
	require.NoError(t, err)
	assert.Equal(t, 42.5, v)

	_, err = Recurring{ID: 9, Type: "transfer", Amount: 1}.SignedAmount()
	assert.ErrorIs(t, err, ErrInconsistent)
}

func TestProjectRecurring(t *testing.T) {
	asAt := EndOfDay(day("2025-01-15"))
	until := EndOfDay(day("2025-06-30"))

	t.Run("accumulates occurrences per month", func(t *testing.T) {
		rs := []Recurring{
			{ID: 1, Type: Credit, Amount: 50, Frequency: Weekly, NextPaymentDate: ptr(day("2025-01-20"))},
			{ID: 2, Type: Debit, Amount: 100, Frequency: Monthly, NextPaymentDate: ptr(day("2025-01-31"))},
		}
		got, err := ProjectRecurring(rs, asAt, asAt, until)
		require.NoError(t, err)
		// January: credits on 20 and 27, debit on 31.
		assert.Equal(t, 0.0, got.Get(YearMonth{2025, time.January}))
		// February: four Mondays, debit on 28.
		assert.Equal(t, 100.0, got.Get(YearMonth{2025, time.February}))
		// March: five Mondays, debit on 28.
		assert.Equal(t, 150.0, got.Get(YearMonth{2025, time.March}))
	})

	t.Run("covers every month even without occurrences", func(t *testing.T) {
		rs := []Recurring{
			{ID: 1, Type: Debit, Amount: 1200, Frequency: Yearly, NextPaymentDate: ptr(day("2025-04-01"))},
		}
		got, err := ProjectRecurring(rs, asAt, asAt, until)
		require.NoError(t, err)
		require.Equal(t, 6, got.Len())
		assert.Equal(t, MonthsBetween(asAt, until), got.Months())
		for _, ym := range got.Months() {
			want := 0.0
			if ym == (YearMonth{2025, time.April}) {
				want = -1200
			}
			assert.Equal(t, want, got.Get(ym), ym.String())
		}
	})

	t.Run("stops at end date", func(t *testing.T) {
		rs := []Recurring{
			{ID: 1, Type: Debit, Amount: 10, Frequency: Monthly, NextPaymentDate: ptr(day("2025-02-01")), EndDate: ptr(day("2025-03-01"))},
		}
		got, err := ProjectRecurring(rs, asAt, asAt, until)
		require.NoError(t, err)
		assert.Equal(t, -10.0, got.Get(YearMonth{2025, time.February}))
		assert.Equal(t, -10.0, got.Get(YearMonth{2025, time.March}))
		assert.Equal(t, 0.0, got.Get(YearMonth{2025, time.April}))
	})

	t.Run("inconsistent type fails", func(t *testing.T) {
		_, err := ProjectRecurring([]Recurring{{Type: "other", Amount: 1}}, asAt, asAt, until)
		assert.ErrorIs(t, err, ErrInconsistent)
	})
}
