package domain

import "time"

// MomentumMetrics is a per-instrument snapshot computed as of an
// evaluation date. Created fresh at each rebalance; never updated
// incrementally.
type MomentumMetrics struct {
	Symbol           string
	Date             time.Time
	CurrentPrice     float64
	High52W          float64
	RetracementPct   float64
	Return3M         float64
	Return6M         float64
	Volatility       float64
	VolAdjReturn     float64
	RelativeStrength float64
}

// CompositeScore is the weighted scalar derived from MomentumMetrics,
// with the rank assigned after sorting.
type CompositeScore struct {
	Symbol  string
	Score   float64
	Rank    int
	Metrics MomentumMetrics
}

// TrendSignal carries the smoothed-moving-average derived signals for
// one instrument on one date. Entry and Exit are never both true: the
// entry band and exit threshold do not overlap.
type TrendSignal struct {
	Symbol        string
	Date          time.Time
	EMA           float64
	DeviationPct  float64
	IsRising      bool
	IsNearSupport bool
	EntrySignal   bool
	ExitSignal    bool
}
