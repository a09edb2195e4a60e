package domain

import (
	"fmt"
	"time"
)

// InsufficientHistoryError means an instrument lacks the minimum trailing
// observations required for a metric. The instrument is excluded from
// that evaluation; the run continues.
type InsufficientHistoryError struct {
	Symbol string
	Metric string
	Need   int
	Have   int
}

func (e InsufficientHistoryError) Error() string {
	return fmt.Sprintf("insufficient history for %s %s: need %d observations, have %d", e.Symbol, e.Metric, e.Need, e.Have)
}

// UndefinedRatioError means a metric's denominator was zero. The
// instrument's score for that date is excluded rather than propagating
// NaN into rankings.
type UndefinedRatioError struct {
	Symbol string
	Metric string
}

func (e UndefinedRatioError) Error() string {
	return fmt.Sprintf("undefined ratio for %s: %s has zero denominator", e.Symbol, e.Metric)
}

// IndeterminateSignalError means a trend signal cannot be computed for
// the given date. Callers treat it as "no entry, no forced exit".
type IndeterminateSignalError struct {
	Symbol string
	Date   time.Time
	Need   int
	Have   int
}

func (e IndeterminateSignalError) Error() string {
	return fmt.Sprintf("indeterminate trend signal for %s on %s: need %d observations, have %d",
		e.Symbol, e.Date.Format(time.DateOnly), e.Need, e.Have)
}

// InsufficientUniverseError means fewer instruments survived filtering
// than the configured minimum. The affected rebalance is skipped; open
// positions are held.
type InsufficientUniverseError struct {
	Date      time.Time
	Survivors int
	Min       int
}

func (e InsufficientUniverseError) Error() string {
	return fmt.Sprintf("insufficient universe on %s: %d survivors, need at least %d",
		e.Date.Format(time.DateOnly), e.Survivors, e.Min)
}
