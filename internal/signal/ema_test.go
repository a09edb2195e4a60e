package signal

import (
	"math"
	"testing"
	"time"

	"niftyalpha/internal/domain"
	"niftyalpha/internal/util"

	"github.com/stretchr/testify/require"
)

func seriesFromCloses(t *testing.T, symbol string, start time.Time, closes []float64) *domain.PriceSeries {
	t.Helper()
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}
	series, err := domain.NewPriceSeries(symbol, bars)
	require.NoError(t, err)
	return series
}

func Test_EMA(t *testing.T) {
	t.Run("constant input", func(t *testing.T) {
		out := EMA([]float64{50, 50, 50, 50, 50}, 3)
		for i, v := range out {
			require.InDelta(t, 50.0, v, 1e-12, "index %d", i)
		}
	})

	t.Run("stays within input range", func(t *testing.T) {
		values := []float64{100, 140, 90, 130, 95, 125, 110, 105, 120}
		out := EMA(values, 4)
		require.Len(t, out, len(values))
		for i, v := range out {
			require.GreaterOrEqual(t, v, 90.0, "index %d", i)
			require.LessOrEqual(t, v, 140.0, "index %d", i)
		}
	})

	t.Run("seed washes out after three periods", func(t *testing.T) {
		values := make([]float64, 200)
		for i := range values {
			values[i] = 100 + float64(i%7)
		}
		reseeded := append([]float64{500}, values...)

		a := EMA(values, 10)
		b := EMA(reseeded, 10)
		require.InDelta(t, a[len(a)-1], b[len(b)-1], 0.01)
	})

	t.Run("empty input", func(t *testing.T) {
		require.Empty(t, EMA(nil, 44))
	})
}

func Test_Generator_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		g, err := NewGenerator(DefaultPeriod)
		require.NoError(t, err)
		require.Equal(t, DefaultPeriod, g.Period)
	})

	t.Run("overlapping bands rejected", func(t *testing.T) {
		g := &Generator{Period: 44, RisingDays: 5, EntryBandPct: 2.0, ExitThresholdPct: -1.5}
		require.Error(t, g.Validate())
	})

	t.Run("non-positive period rejected", func(t *testing.T) {
		_, err := NewGenerator(0)
		require.Error(t, err)
	})
}

func Test_Generator_Compute(t *testing.T) {
	start := util.NewDate(2020, 1, 1)

	generator, err := NewGenerator(DefaultPeriod)
	require.NoError(t, err)

	t.Run("indeterminate below minimum history", func(t *testing.T) {
		closes := make([]float64, generator.Period+generator.RisingDays-1)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		series := seriesFromCloses(t, "AAA.NS", start, closes)

		asOf := start.AddDate(0, 0, len(closes)-1)
		_, err := generator.Compute(series, asOf)
		require.Error(t, err)
		sigErr, ok := err.(domain.IndeterminateSignalError)
		require.True(t, ok, "expected IndeterminateSignalError, got %T", err)
		require.Equal(t, generator.Period+generator.RisingDays, sigErr.Need)
		require.Equal(t, len(closes), sigErr.Have)
	})

	t.Run("rising series above band does not enter", func(t *testing.T) {
		closes := make([]float64, 120)
		for i := range closes {
			closes[i] = 100 + 0.5*float64(i)
		}
		series := seriesFromCloses(t, "AAA.NS", start, closes)

		sig, err := generator.Compute(series, start.AddDate(0, 0, 119))
		require.NoError(t, err)
		require.True(t, sig.IsRising)
		require.False(t, sig.IsNearSupport)
		require.False(t, sig.EntrySignal)
		require.False(t, sig.ExitSignal)
		require.Greater(t, sig.DeviationPct, DefaultEntryBandPct)
	})

	t.Run("flat series is not rising", func(t *testing.T) {
		closes := make([]float64, 120)
		for i := range closes {
			closes[i] = 100
		}
		series := seriesFromCloses(t, "FLAT.NS", start, closes)

		sig, err := generator.Compute(series, start.AddDate(0, 0, 119))
		require.NoError(t, err)
		require.False(t, sig.IsRising)
		require.True(t, sig.IsNearSupport)
		require.False(t, sig.EntrySignal)
		require.False(t, sig.ExitSignal)
	})

	t.Run("pullback to rising average enters", func(t *testing.T) {
		closes := make([]float64, 120)
		for i := range closes[:119] {
			closes[i] = 100 + 0.5*float64(i)
		}
		// final close slightly above the prior average keeps it rising
		// while landing inside the entry band
		prior := EMA(closes[:119], generator.Period)
		closes[119] = prior[118] * 1.005
		series := seriesFromCloses(t, "AAA.NS", start, closes)

		sig, err := generator.Compute(series, start.AddDate(0, 0, 119))
		require.NoError(t, err)
		require.True(t, sig.IsRising)
		require.True(t, sig.IsNearSupport)
		require.True(t, sig.EntrySignal)
		require.False(t, sig.ExitSignal)
		require.LessOrEqual(t, math.Abs(sig.DeviationPct), DefaultEntryBandPct)
	})

	t.Run("exit threshold is strict", func(t *testing.T) {
		closes := make([]float64, 120)
		for i := range closes[:119] {
			closes[i] = 100 + 0.5*float64(i)
		}
		prior := EMA(closes[:119], generator.Period)

		// choose the final close so the deviation lands exactly on the
		// threshold: p = 0.98 * (p*k + prior*(1-k))
		k := 2.0 / (float64(generator.Period) + 1)
		boundary := 0.98 * (1 - k) * prior[118] / (1 - 0.98*k)

		closes[119] = boundary
		sig, err := generator.Compute(seriesFromCloses(t, "AAA.NS", start, closes), start.AddDate(0, 0, 119))
		require.NoError(t, err)
		require.InDelta(t, -2.0, sig.DeviationPct, 1e-9)
		require.False(t, sig.ExitSignal)

		closes[119] = boundary * 0.999
		sig, err = generator.Compute(seriesFromCloses(t, "AAA.NS", start, closes), start.AddDate(0, 0, 119))
		require.NoError(t, err)
		require.Less(t, sig.DeviationPct, -2.0)
		require.True(t, sig.ExitSignal)
	})

	t.Run("entry and exit never fire together", func(t *testing.T) {
		closes := make([]float64, 200)
		for i := range closes {
			closes[i] = 100 + 20*math.Sin(float64(i)/9) + 0.2*float64(i)
		}
		series := seriesFromCloses(t, "WAVE.NS", start, closes)

		for i := generator.Period + generator.RisingDays; i < len(closes); i++ {
			sig, err := generator.Compute(series, start.AddDate(0, 0, i))
			require.NoError(t, err)
			require.False(t, sig.EntrySignal && sig.ExitSignal, "day %d", i)
		}
	})
}
