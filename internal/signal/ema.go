package signal

import (
	"fmt"
	"math"
	"time"

	"niftyalpha/internal/domain"
)

const (
	DefaultPeriod           = 44
	DefaultRisingDays       = 5
	DefaultEntryBandPct     = 1.0
	DefaultExitThresholdPct = -2.0
)

// Generator computes EMA-based trend signals. Entry fires when the EMA
// has risen strictly for RisingDays consecutive steps and the price sits
// within EntryBandPct of the EMA; exit fires when the price closes below
// the EMA by more than -ExitThresholdPct. The bands must not overlap so
// entry and exit can never both fire on the same day.
type Generator struct {
	Period           int
	RisingDays       int
	EntryBandPct     float64
	ExitThresholdPct float64
}

func NewGenerator(period int) (*Generator, error) {
	g := &Generator{
		Period:           period,
		RisingDays:       DefaultRisingDays,
		EntryBandPct:     DefaultEntryBandPct,
		ExitThresholdPct: DefaultExitThresholdPct,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Generator) Validate() error {
	if g.Period <= 0 {
		return fmt.Errorf("ema period must be positive, got %d", g.Period)
	}
	if g.RisingDays <= 0 {
		return fmt.Errorf("rising days must be positive, got %d", g.RisingDays)
	}
	if g.EntryBandPct <= 0 {
		return fmt.Errorf("entry band must be positive, got %f", g.EntryBandPct)
	}
	if g.ExitThresholdPct >= -g.EntryBandPct {
		return fmt.Errorf("exit threshold %f overlaps entry band ±%f", g.ExitThresholdPct, g.EntryBandPct)
	}
	return nil
}

// Compute derives the trend signal for the instrument as of the given
// date. Fewer than Period+RisingDays trailing observations means the
// signal is indeterminate; callers take no action for that day.
func (g *Generator) Compute(series *domain.PriceSeries, asOf time.Time) (*domain.TrendSignal, error) {
	slice := series.Through(asOf)
	closes := slice.Closes()
	n := len(closes)

	need := g.Period + g.RisingDays
	if n < need {
		return nil, domain.IndeterminateSignalError{
			Symbol: series.Symbol,
			Date:   asOf,
			Need:   need,
			Have:   n,
		}
	}

	ema := EMA(closes, g.Period)

	rising := true
	for i := 1; i <= g.RisingDays; i++ {
		if ema[n-i] <= ema[n-i-1] {
			rising = false
			break
		}
	}

	currentPrice := closes[n-1]
	currentEMA := ema[n-1]
	deviation := (currentPrice - currentEMA) / currentEMA * 100
	nearSupport := math.Abs(deviation) <= g.EntryBandPct

	return &domain.TrendSignal{
		Symbol:        series.Symbol,
		Date:          asOf,
		EMA:           currentEMA,
		DeviationPct:  deviation,
		IsRising:      rising,
		IsNearSupport: nearSupport,
		EntrySignal:   rising && nearSupport,
		ExitSignal:    deviation < g.ExitThresholdPct,
	}, nil
}

// EMA computes the exponential moving average of values with smoothing
// k = 2/(period+1), seeded with the first value. The seed only affects
// roughly the first 3*period observations before the series converges.
func EMA(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	k := 2.0 / (float64(period) + 1)
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}
