package app

import (
	"fmt"
	"sort"
	"time"

	"niftyalpha/internal/calculator"
	"niftyalpha/internal/domain"
	"niftyalpha/internal/screener"
	"niftyalpha/internal/signal"
	"niftyalpha/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type RebalanceFrequency string

const (
	RebalanceWeekly    RebalanceFrequency = "weekly"
	RebalanceMonthly   RebalanceFrequency = "monthly"
	RebalanceQuarterly RebalanceFrequency = "quarterly"
)

func ParseRebalanceFrequency(s string) (RebalanceFrequency, error) {
	switch RebalanceFrequency(s) {
	case RebalanceWeekly, RebalanceMonthly, RebalanceQuarterly:
		return RebalanceFrequency(s), nil
	}
	return "", fmt.Errorf("unknown rebalance frequency %q", s)
}

type BacktestHandler struct {
	Screener        *screener.Screener
	SignalGenerator *signal.Generator
	Log             *zap.SugaredLogger
}

type BacktestInput struct {
	RunID               uuid.UUID
	PriceSeriesBySymbol map[string]*domain.PriceSeries
	BenchmarkSeries     *domain.PriceSeries
	Start               time.Time
	End                 time.Time
	RebalanceFrequency  RebalanceFrequency
	InitialCapital      decimal.Decimal
}

func (in BacktestInput) validate() error {
	if len(in.PriceSeriesBySymbol) == 0 {
		return fmt.Errorf("cannot backtest an empty universe")
	}
	if in.BenchmarkSeries == nil || in.BenchmarkSeries.Len() == 0 {
		return fmt.Errorf("cannot backtest without a benchmark series")
	}
	if !in.InitialCapital.IsPositive() {
		return fmt.Errorf("initial capital must be positive, got %s", in.InitialCapital)
	}
	if in.End.Before(in.Start) {
		return fmt.Errorf("backtest end %s precedes start %s",
			in.End.Format(time.DateOnly), in.Start.Format(time.DateOnly))
	}
	if _, err := ParseRebalanceFrequency(string(in.RebalanceFrequency)); err != nil {
		return err
	}
	return nil
}

type BacktestResult struct {
	RunID          uuid.UUID
	EquityCurve    []domain.EquityPoint
	Trades         []domain.Trade
	FinalPortfolio *domain.Portfolio
}

// Run steps the portfolio one trading day at a time over the
// benchmark's calendar. Exits are evaluated before entries every day;
// re-ranking happens only on rebalance boundaries. The loop owns the
// portfolio exclusively and is fully deterministic for identical input.
func (h BacktestHandler) Run(in BacktestInput) (*BacktestResult, error) {
	if err := in.validate(); err != nil {
		return nil, fmt.Errorf("invalid backtest input: %w", err)
	}

	tradingDays := []time.Time{}
	for _, d := range in.BenchmarkSeries.Dates() {
		if !d.Before(in.Start) && util.DateLte(d, in.End) {
			tradingDays = append(tradingDays, d)
		}
	}
	if len(tradingDays) == 0 {
		return nil, fmt.Errorf("benchmark has no trading days between %s and %s",
			in.Start.Format(time.DateOnly), in.End.Format(time.DateOnly))
	}

	symbols := make([]string, 0, len(in.PriceSeriesBySymbol))
	for symbol := range in.PriceSeriesBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	sim := &simulation{
		handler:   h,
		input:     in,
		symbols:   symbols,
		portfolio: domain.NewPortfolio(in.InitialCapital),
		lastClose: map[string]decimal.Decimal{},
		cursors:   map[string]int{},
		ranked:    map[string]bool{},
	}

	var prevDay time.Time
	for i, day := range tradingDays {
		sim.markPrices(day)

		sim.evaluateTrendExits(day)

		if i == 0 || sim.isRebalanceBoundary(prevDay, day) {
			sim.rebalance(day)
		}

		sim.recordEquity(day)
		prevDay = day
	}

	return &BacktestResult{
		RunID:          in.RunID,
		EquityCurve:    sim.equityCurve,
		Trades:         sim.trades,
		FinalPortfolio: sim.portfolio,
	}, nil
}

type simulation struct {
	handler BacktestHandler
	input   BacktestInput

	symbols   []string
	portfolio *domain.Portfolio
	lastClose map[string]decimal.Decimal
	cursors   map[string]int

	// ranked holds the membership of the most recent successful top-N
	// ranking. A failed re-ranking leaves it untouched, so positions are
	// held rather than force-liquidated on data gaps.
	ranked map[string]bool

	equityCurve []domain.EquityPoint
	trades      []domain.Trade
}

func (s *simulation) isRebalanceBoundary(prev, day time.Time) bool {
	switch s.input.RebalanceFrequency {
	case RebalanceWeekly:
		return !util.SameWeek(prev, day)
	case RebalanceQuarterly:
		return !util.SameQuarter(prev, day)
	default:
		return !util.SameMonth(prev, day)
	}
}

// markPrices advances each instrument's last known close through the
// given day. Instruments with no bar that day keep their prior close
// for mark-to-market purposes.
func (s *simulation) markPrices(day time.Time) {
	for _, symbol := range s.symbols {
		series := s.input.PriceSeriesBySymbol[symbol]
		i := s.cursors[symbol]
		for i < series.Len() && util.DateLte(series.Bars[i].Date, day) {
			s.lastClose[symbol] = decimal.NewFromFloat(series.Bars[i].Close)
			i++
		}
		s.cursors[symbol] = i
	}
}

// evaluateTrendExits closes any held position whose daily exit signal
// fires, regardless of rebalance cadence. Indeterminate signals mean no
// action for that instrument that day.
func (s *simulation) evaluateTrendExits(day time.Time) {
	for _, symbol := range s.portfolio.HeldSymbols() {
		series := s.input.PriceSeriesBySymbol[symbol]
		sig, err := s.handler.SignalGenerator.Compute(series, day)
		if err != nil {
			s.handler.Log.Debugw("skipping exit evaluation",
				"run", s.input.RunID, "symbol", symbol, "date", day.Format(time.DateOnly), "reason", err)
			continue
		}
		if sig.ExitSignal {
			s.sell(day, symbol, domain.TradeReasonTrendExit)
		}
	}
}

// rebalance re-ranks the universe and transitions the portfolio: held
// instruments absent from the fresh top-N are closed, then available
// cash is split equally across ranked instruments whose entry signal
// fires. InsufficientUniverse skips the period without touching
// positions.
func (s *simulation) rebalance(day time.Time) {
	metricsBySymbol := map[string]*domain.MomentumMetrics{}
	for _, symbol := range s.symbols {
		series := s.input.PriceSeriesBySymbol[symbol]
		m, err := calculator.ComputeMetrics(series, s.input.BenchmarkSeries, day)
		if err != nil {
			s.handler.Log.Debugw("excluding instrument from ranking",
				"run", s.input.RunID, "symbol", symbol, "date", day.Format(time.DateOnly), "reason", err)
			continue
		}
		metricsBySymbol[symbol] = m
	}

	ranked, err := s.handler.Screener.ScoreAndRank(metricsBySymbol, day)
	if err != nil {
		// Hold existing positions through a failed re-ranking; the
		// period is skipped, not the run.
		s.handler.Log.Warnw("skipping rebalance",
			"run", s.input.RunID, "date", day.Format(time.DateOnly), "reason", err)
		return
	}

	s.ranked = map[string]bool{}
	for _, score := range ranked {
		s.ranked[score.Symbol] = true
	}

	for _, symbol := range s.portfolio.HeldSymbols() {
		if !s.ranked[symbol] {
			s.sell(day, symbol, domain.TradeReasonRankExit)
		}
	}

	// Entry candidates keep rank order; the allocation is fixed before
	// any buy executes so simultaneous entrants split cash equally.
	candidates := []string{}
	for _, score := range ranked {
		if _, held := s.portfolio.Positions[score.Symbol]; held {
			continue
		}
		sig, err := s.handler.SignalGenerator.Compute(s.input.PriceSeriesBySymbol[score.Symbol], day)
		if err != nil {
			s.handler.Log.Debugw("skipping entry evaluation",
				"run", s.input.RunID, "symbol", score.Symbol, "date", day.Format(time.DateOnly), "reason", err)
			continue
		}
		if sig.EntrySignal {
			candidates = append(candidates, score.Symbol)
		}
	}
	if len(candidates) == 0 {
		return
	}

	allocation := s.portfolio.Cash.Div(decimal.NewFromInt(int64(len(candidates))))
	for _, symbol := range candidates {
		s.buy(day, symbol, allocation)
	}
}

func (s *simulation) buy(day time.Time, symbol string, allocation decimal.Decimal) {
	price, ok := s.lastClose[symbol]
	if !ok || !price.IsPositive() {
		s.handler.Log.Debugw("skipping entry without a price",
			"run", s.input.RunID, "symbol", symbol, "date", day.Format(time.DateOnly))
		return
	}

	shares := allocation.Div(price).Floor().IntPart()
	if shares < 1 {
		return
	}
	cost := price.Mul(decimal.NewFromInt(shares))

	s.portfolio.Cash = s.portfolio.Cash.Sub(cost)
	s.portfolio.Positions[symbol] = &domain.Position{
		Symbol:     symbol,
		Shares:     shares,
		EntryDate:  day,
		EntryPrice: price,
		CostBasis:  cost,
	}

	s.trades = append(s.trades, domain.Trade{
		Date:   day,
		Symbol: symbol,
		Action: domain.TradeActionBuy,
		Price:  price,
		Shares: shares,
		PnL:    decimal.Zero,
		Reason: domain.TradeReasonEntrySignal,
	})
}

func (s *simulation) sell(day time.Time, symbol string, reason string) {
	position := s.portfolio.Positions[symbol]
	price := s.lastClose[symbol]

	proceeds := position.MarketValue(price)
	pnl := proceeds.Sub(position.CostBasis)
	pnlPct := price.Sub(position.EntryPrice).
		Div(position.EntryPrice).
		Mul(decimal.NewFromInt(100)).
		InexactFloat64()

	s.portfolio.Cash = s.portfolio.Cash.Add(proceeds)
	delete(s.portfolio.Positions, symbol)

	s.trades = append(s.trades, domain.Trade{
		Date:   day,
		Symbol: symbol,
		Action: domain.TradeActionSell,
		Price:  price,
		Shares: position.Shares,
		PnL:    pnl,
		PnLPct: pnlPct,
		Reason: reason,
	})
}

// recordEquity appends the day's mark-to-market snapshot. This happens
// unconditionally, on every trading day, active or not.
func (s *simulation) recordEquity(day time.Time) {
	positionsValue := decimal.Zero
	for _, symbol := range s.portfolio.HeldSymbols() {
		positionsValue = positionsValue.Add(s.portfolio.Positions[symbol].MarketValue(s.lastClose[symbol]))
	}
	s.equityCurve = append(s.equityCurve, domain.EquityPoint{
		Date:           day,
		TotalValue:     s.portfolio.Cash.Add(positionsValue),
		Cash:           s.portfolio.Cash,
		PositionsValue: positionsValue,
		NumPositions:   len(s.portfolio.Positions),
	})
}
