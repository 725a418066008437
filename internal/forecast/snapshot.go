package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInconsistent marks input the engine cannot make sense of, such as a
// recurring that is neither a debit nor a credit.
var ErrInconsistent = errors.New("inconsistent forecast input")

// EntryType is the direction of a transaction or recurring.
type EntryType string

const (
	Debit  EntryType = "debit"
	Credit EntryType = "credit"
)

// Transaction is a posted transaction. Amount is signed: credits positive,
// debits negative.
type Transaction struct {
	OccurredAt time.Time
	Amount     float64
	Type       EntryType
}

// Recurring is a scheduled debit or credit. Amount is a magnitude; the sign
// comes from Type.
type Recurring struct {
	ID              int64
	Description     string
	Amount          float64
	Type            EntryType
	Frequency       Frequency
	StartDate       time.Time
	EndDate         *time.Time
	LastPaymentDate *time.Time
	NextPaymentDate *time.Time
}

// Active reports whether r still runs at asAt: it has no end date or ends on
// or after asAt.
func (r Recurring) Active(asAt time.Time) bool {
	return r.EndDate == nil || !r.EndDate.Before(StartOfDay(asAt))
}

// SignedAmount returns the amount as it affects the ledger balance.
func (r Recurring) SignedAmount() (float64, error) {
	switch r.Type {
	case Debit:
		return -math.Abs(r.Amount), nil
	case Credit:
		return math.Abs(r.Amount), nil
	default:
		return 0, fmt.Errorf("%w: recurring %d has type %q", ErrInconsistent, r.ID, r.Type)
	}
}

// Anchor resolves the first occurrence to project from: the stored next
// payment date, else one step after the last payment, else asAt.
func (r Recurring) Anchor(asAt time.Time) time.Time {
	switch {
	case r.NextPaymentDate != nil:
		return *r.NextPaymentDate
	case r.LastPaymentDate != nil:
		return r.Frequency.Step(*r.LastPaymentDate)
	default:
		return asAt
	}
}

// ActiveRecurrings filters rs down to those active at asAt.
func ActiveRecurrings(rs []Recurring, asAt time.Time) []Recurring {
	active := make([]Recurring, 0, len(rs))
	for _, r := range rs {
		if r.Active(asAt) {
			active = append(active, r)
		}
	}
	return active
}

// Snapshot is everything the engine needs to forecast one ledger. It is read
// only for the duration of a forecast.
type Snapshot struct {
	LedgerID        int64
	LedgerName      string
	StartingBalance float64
	// CreditSum and DebitSum are magnitudes of posted activity up to asAt.
	CreditSum  float64
	DebitSum   float64
	Recurrings []Recurring
	// History holds transactions inside the seasonal lookback window.
	History []Transaction
}

// Opening is the ledger balance at asAt.
func (s Snapshot) Opening() float64 {
	return s.StartingBalance + s.CreditSum - s.DebitSum
}
