// Package forecast projects ledger balances forward from posted activity,
// scheduled recurring debits and credits, and a month-of-year average of the
// activity that is not scheduled.
//
// Everything in the package is a pure function of its inputs: callers pass the
// reference time explicitly and supply a read-only Snapshot per ledger, so
// forecasts for different ledgers can run concurrently.
package forecast

// Engine forecasts single ledgers with a fixed seasonal lookback.
type Engine struct {
	lookbackMonths int
}

// NewEngine returns an engine whose seasonal model looks back lookbackMonths
// whole months before the as-at month. Non-positive values use the default.
func NewEngine(lookbackMonths int) *Engine {
	if lookbackMonths <= 0 {
		lookbackMonths = DefaultLookbackMonths
	}
	return &Engine{lookbackMonths: lookbackMonths}
}

// LookbackMonths returns the seasonal lookback in months.
func (e *Engine) LookbackMonths() int { return e.lookbackMonths }

// Forecast composes the opening balance of snap with its recurring and
// seasonal projections over w.
func (e *Engine) Forecast(snap Snapshot, w Window) (Result, error) {
	active := ActiveRecurrings(snap.Recurrings, w.AsAt)
	recurring, err := ProjectRecurring(active, w.AsAt, w.AsAt, w.Until)
	if err != nil {
		return Result{}, err
	}
	snap.Recurrings = active
	historical, err := ProjectSeasonal(snap, w, e.lookbackMonths)
	if err != nil {
		return Result{}, err
	}
	return Compose(snap.Opening(), recurring, historical, w.Months()), nil
}
