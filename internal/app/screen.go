package app

import (
	"fmt"
	"sort"
	"time"

	"niftyalpha/internal/calculator"
	"niftyalpha/internal/domain"
	"niftyalpha/internal/screener"
	"niftyalpha/internal/signal"

	"go.uber.org/zap"
)

type ScreenHandler struct {
	Screener        *screener.Screener
	SignalGenerator *signal.Generator
	Log             *zap.SugaredLogger
}

type ScreenInput struct {
	PriceSeriesBySymbol map[string]*domain.PriceSeries
	BenchmarkSeries     *domain.PriceSeries
	AsOf                time.Time
}

// BuyCandidate is a ranked instrument whose entry signal fires on the
// evaluation date, with the EMA context used for the decision.
type BuyCandidate struct {
	Symbol       string
	Rank         int
	Price        float64
	EMA          float64
	DeviationPct float64
}

type ScreenResult struct {
	AsOf    time.Time
	Ranked  []domain.CompositeScore
	BuyList []BuyCandidate
}

// Screen produces the ranked momentum table for the evaluation date and
// the subset of ranked instruments currently showing an entry signal.
// Instruments without enough history or with undefined ratios are
// excluded and logged, never fatal.
func (h ScreenHandler) Screen(in ScreenInput) (*ScreenResult, error) {
	if len(in.PriceSeriesBySymbol) == 0 {
		return nil, fmt.Errorf("cannot screen an empty universe")
	}
	if in.BenchmarkSeries == nil || in.BenchmarkSeries.Len() == 0 {
		return nil, fmt.Errorf("cannot screen without a benchmark series")
	}

	symbols := make([]string, 0, len(in.PriceSeriesBySymbol))
	for symbol := range in.PriceSeriesBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	metricsBySymbol := map[string]*domain.MomentumMetrics{}
	for _, symbol := range symbols {
		m, err := calculator.ComputeMetrics(in.PriceSeriesBySymbol[symbol], in.BenchmarkSeries, in.AsOf)
		if err != nil {
			h.Log.Debugw("excluding instrument from screen",
				"symbol", symbol, "date", in.AsOf.Format(time.DateOnly), "reason", err)
			continue
		}
		metricsBySymbol[symbol] = m
	}

	ranked, err := h.Screener.ScoreAndRank(metricsBySymbol, in.AsOf)
	if err != nil {
		return nil, err
	}

	buyList := []BuyCandidate{}
	for _, score := range ranked {
		sig, err := h.SignalGenerator.Compute(in.PriceSeriesBySymbol[score.Symbol], in.AsOf)
		if err != nil {
			h.Log.Debugw("excluding instrument from buy list",
				"symbol", score.Symbol, "date", in.AsOf.Format(time.DateOnly), "reason", err)
			continue
		}
		if sig.EntrySignal {
			buyList = append(buyList, BuyCandidate{
				Symbol:       score.Symbol,
				Rank:         score.Rank,
				Price:        score.Metrics.CurrentPrice,
				EMA:          sig.EMA,
				DeviationPct: sig.DeviationPct,
			})
		}
	}

	return &ScreenResult{
		AsOf:    in.AsOf,
		Ranked:  ranked,
		BuyList: buyList,
	}, nil
}
