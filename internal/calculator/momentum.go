package calculator

import (
	"math"
	"time"

	"niftyalpha/internal/domain"

	"github.com/montanaflynn/stats"
)

// Trailing-window sizes, in trading days.
const (
	RetracementWindow = 252
	SixMonthWindow    = 126
	ThreeMonthWindow  = 63
	VolatilityWindow  = 60
)

// ComputeMetrics derives the full momentum snapshot for one instrument
// as of the given date, using the benchmark series over the identical
// window for relative strength. Each metric enforces its own minimum
// trailing history; the first unmet window aborts with
// InsufficientHistoryError. Zero-denominator ratios abort with
// UndefinedRatioError.
func ComputeMetrics(series, benchmark *domain.PriceSeries, asOf time.Time) (*domain.MomentumMetrics, error) {
	slice := series.Through(asOf)
	closes := slice.Closes()
	n := len(closes)

	if n < RetracementWindow {
		return nil, domain.InsufficientHistoryError{
			Symbol: series.Symbol,
			Metric: "retracement_52w",
			Need:   RetracementWindow,
			Have:   n,
		}
	}

	currentPrice := closes[n-1]
	high52w := rollingMax(closes[n-RetracementWindow:])
	retracement := (high52w - currentPrice) / high52w * 100

	return3m, err := trailingReturn(series.Symbol, "return_3m", closes, ThreeMonthWindow)
	if err != nil {
		return nil, err
	}
	return6m, err := trailingReturn(series.Symbol, "return_6m", closes, SixMonthWindow)
	if err != nil {
		return nil, err
	}

	volatility, err := annualizedVolatility(series.Symbol, closes)
	if err != nil {
		return nil, err
	}
	if volatility == 0 {
		return nil, domain.UndefinedRatioError{Symbol: series.Symbol, Metric: "vol_adj_return"}
	}
	volAdjReturn := return6m / volatility

	benchCloses := benchmark.Through(asOf).Closes()
	benchReturn6m, err := trailingReturn(benchmark.Symbol, "return_6m", benchCloses, SixMonthWindow)
	if err != nil {
		return nil, err
	}
	if benchReturn6m == 0 {
		return nil, domain.UndefinedRatioError{Symbol: series.Symbol, Metric: "relative_strength"}
	}
	relativeStrength := return6m / benchReturn6m

	return &domain.MomentumMetrics{
		Symbol:           series.Symbol,
		Date:             asOf,
		CurrentPrice:     currentPrice,
		High52W:          high52w,
		RetracementPct:   retracement,
		Return3M:         return3m,
		Return6M:         return6m,
		Volatility:       volatility,
		VolAdjReturn:     volAdjReturn,
		RelativeStrength: relativeStrength,
	}, nil
}

// trailingReturn computes (price[D] / price[D-horizon] - 1) * 100.
func trailingReturn(symbol, metric string, closes []float64, horizon int) (float64, error) {
	n := len(closes)
	if n < horizon+1 {
		return 0, domain.InsufficientHistoryError{
			Symbol: symbol,
			Metric: metric,
			Need:   horizon + 1,
			Have:   n,
		}
	}
	return (closes[n-1]/closes[n-1-horizon] - 1) * 100, nil
}

// annualizedVolatility is the sample stdev of daily percent changes
// over the trailing volatility window, annualized by sqrt(252). The
// result is in percent, same scale as the trailing returns.
func annualizedVolatility(symbol string, closes []float64) (float64, error) {
	n := len(closes)
	if n < VolatilityWindow+1 {
		return 0, domain.InsufficientHistoryError{
			Symbol: symbol,
			Metric: "volatility",
			Need:   VolatilityWindow + 1,
			Have:   n,
		}
	}

	window := closes[n-VolatilityWindow-1:]
	changes := make([]float64, VolatilityWindow)
	for i := 1; i < len(window); i++ {
		changes[i-1] = percentChange(window[i], window[i-1])
	}

	stdev, err := stats.StandardDeviationSample(changes)
	if err != nil {
		return 0, err
	}
	return stdev * math.Sqrt(252), nil
}

func percentChange(end, start float64) float64 {
	return (end - start) / start * 100
}

func rollingMax(window []float64) float64 {
	max := window[0]
	for _, v := range window[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
