package forecast

import (
	"iter"
	"time"
)

// MaxSteps bounds the walk from an anchor up to a window start.
const MaxSteps = 1000

// AdvanceToOrEqual steps start by f until it is on or after target. If the
// bound runs out first the last cursor is returned unchanged.
func AdvanceToOrEqual(start time.Time, f Frequency, target time.Time) time.Time {
	cursor := start
	for i := 0; i < MaxSteps && cursor.Before(target); i++ {
		cursor = f.Step(cursor)
	}
	return cursor
}

// Occurrences returns the dates of a schedule anchored at anchor that fall
// inside [from, to] and on or before end when end is set. The sequence is
// recomputed on every range, so it can be iterated any number of times.
// Every step moves the cursor forward, so the walk ends once it passes to.
func Occurrences(anchor time.Time, f Frequency, from, to time.Time, end *time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		cursor := AdvanceToOrEqual(anchor, f, from)
		for {
			if cursor.After(to) || (end != nil && cursor.After(*end)) {
				return
			}
			if cursor.Before(from) {
				// bound exhausted before reaching the window
				return
			}
			if !yield(cursor) {
				return
			}
			cursor = f.Step(cursor)
		}
	}
}
