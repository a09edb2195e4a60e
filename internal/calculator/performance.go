package calculator

import (
	"fmt"
	"math"

	"niftyalpha/internal/domain"

	"github.com/montanaflynn/stats"
)

// Trading days per year, used to annualize the equity curve's native
// daily returns.
const periodsPerYear = 252

// AnalyzePerformance derives summary statistics from the equity curve
// and trade log of a completed backtest. Sharpe and win rate come back
// nil when undefined (zero return variance, zero closed trades); the
// other statistics are always defined for a curve of two or more points.
func AnalyzePerformance(curve []domain.EquityPoint, trades []domain.Trade) (*domain.PerformanceSummary, error) {
	if len(curve) < 2 {
		return nil, fmt.Errorf("cannot analyze performance of equity curve with %d points", len(curve))
	}

	initial := curve[0].TotalValue.InexactFloat64()
	final := curve[len(curve)-1].TotalValue.InexactFloat64()
	if initial <= 0 {
		return nil, fmt.Errorf("cannot analyze performance from non-positive initial value %f", initial)
	}

	years := curve[len(curve)-1].Date.Sub(curve[0].Date).Hours() / 24 / 365.25
	if years <= 0 {
		return nil, fmt.Errorf("equity curve spans no time")
	}

	values := make([]float64, len(curve))
	for i, point := range curve {
		values[i] = point.TotalValue.InexactFloat64()
	}

	summary := &domain.PerformanceSummary{
		InitialValue:   initial,
		FinalValue:     final,
		TotalReturnPct: (final/initial - 1) * 100,
		CAGRPct:        (math.Pow(final/initial, 1/years) - 1) * 100,
		MaxDrawdownPct: MaxDrawdown(values),
		Years:          years,
		TotalTrades:    len(trades),
		ClosedTrades:   countClosed(trades),
	}

	sharpe, err := SharpeRatio(periodicReturns(values), periodsPerYear)
	if err == nil {
		summary.SharpeRatio = &sharpe
	} else if _, undefined := err.(domain.UndefinedRatioError); !undefined {
		return nil, err
	}

	winRate, err := WinRate(trades)
	if err == nil {
		summary.WinRatePct = &winRate
	} else if _, undefined := err.(domain.UndefinedRatioError); !undefined {
		return nil, err
	}

	return summary, nil
}

// MaxDrawdown returns the deepest percentage decline from a running
// peak. Non-positive; exactly 0 for a never-declining curve.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	runningMax := values[0]
	maxDrawdown := 0.0
	for _, v := range values {
		if v > runningMax {
			runningMax = v
		}
		drawdown := (v - runningMax) / runningMax * 100
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}

// SharpeRatio annualizes mean/stdev of periodic returns with a zero
// risk-free rate. A zero-variance return stream has no defined Sharpe
// and comes back as UndefinedRatioError rather than a silent zero.
func SharpeRatio(returns []float64, periodsPerYear float64) (float64, error) {
	if len(returns) < 2 {
		return 0, fmt.Errorf("cannot compute sharpe ratio of %d returns", len(returns))
	}
	mean, err := stats.Mean(returns)
	if err != nil {
		return 0, err
	}
	stdev, err := stats.StandardDeviationSample(returns)
	if err != nil {
		return 0, err
	}
	if stdev == 0 {
		return 0, domain.UndefinedRatioError{Metric: "sharpe_ratio"}
	}
	return mean / stdev * math.Sqrt(periodsPerYear), nil
}

// WinRate is the percentage of closed trades with positive realized
// P&L. Zero closed trades means the statistic is undefined.
func WinRate(trades []domain.Trade) (float64, error) {
	closed := 0
	winners := 0
	for _, trade := range trades {
		if trade.Action != domain.TradeActionSell {
			continue
		}
		closed++
		if trade.PnL.IsPositive() {
			winners++
		}
	}
	if closed == 0 {
		return 0, domain.UndefinedRatioError{Metric: "win_rate"}
	}
	return float64(winners) / float64(closed) * 100, nil
}

func periodicReturns(values []float64) []float64 {
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		returns = append(returns, values[i]/values[i-1]-1)
	}
	return returns
}

func countClosed(trades []domain.Trade) int {
	closed := 0
	for _, trade := range trades {
		if trade.Action == domain.TradeActionSell {
			closed++
		}
	}
	return closed
}
