package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Position is an open holding. Positions are only ever fully
// liquidated; there are no partial sells.
type Position struct {
	Symbol     string
	Shares     int64
	EntryDate  time.Time
	EntryPrice decimal.Decimal
	CostBasis  decimal.Decimal
}

func (p Position) MarketValue(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(p.Shares))
}

func (p Position) DeepCopy() *Position {
	return &Position{
		Symbol:     p.Symbol,
		Shares:     p.Shares,
		EntryDate:  p.EntryDate,
		EntryPrice: p.EntryPrice,
		CostBasis:  p.CostBasis,
	}
}

// Portfolio is the simulator-owned state: cash plus open positions.
// Cash never goes negative; entries that cannot be fully funded are
// skipped, not partially filled.
type Portfolio struct {
	Positions map[string]*Position
	Cash      decimal.Decimal
}

func NewPortfolio(cash decimal.Decimal) *Portfolio {
	return &Portfolio{
		Positions: map[string]*Position{},
		Cash:      cash,
	}
}

// HeldSymbols lists open positions in lexicographic order so iteration
// over holdings is deterministic.
func (p Portfolio) HeldSymbols() []string {
	symbols := make([]string, 0, len(p.Positions))
	for symbol := range p.Positions {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func (p Portfolio) DeepCopy() *Portfolio {
	newPortfolio := &Portfolio{
		Cash:      p.Cash,
		Positions: map[string]*Position{},
	}
	for symbol, position := range p.Positions {
		newPortfolio.Positions[symbol] = position.DeepCopy()
	}
	return newPortfolio
}

// TotalValue marks all open positions to the given prices and adds cash.
func (p Portfolio) TotalValue(priceMap map[string]decimal.Decimal) (decimal.Decimal, error) {
	totalValue := p.Cash
	for symbol, position := range p.Positions {
		price, ok := priceMap[symbol]
		if !ok {
			return decimal.Zero, fmt.Errorf("cannot compute portfolio total value: price map missing %s", symbol)
		}
		totalValue = totalValue.Add(position.MarketValue(price))
	}
	return totalValue, nil
}

type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// Exit/entry reasons recorded on trades. Stable strings: they appear in
// the exported trade log.
const (
	TradeReasonEntrySignal = "EMA entry signal"
	TradeReasonRankExit    = "out of top ranks"
	TradeReasonTrendExit   = "closed below EMA"
)

// Trade is a closed-loop record of a fill. BUY trades carry zero P&L;
// SELL trades realize it.
type Trade struct {
	Date   time.Time
	Symbol string
	Action TradeAction
	Price  decimal.Decimal
	Shares int64
	PnL    decimal.Decimal
	PnLPct float64
	Reason string
}

// EquityPoint is one day of the equity curve. TotalValue always equals
// Cash + PositionsValue exactly.
type EquityPoint struct {
	Date           time.Time
	TotalValue     decimal.Decimal
	Cash           decimal.Decimal
	PositionsValue decimal.Decimal
	NumPositions   int
}

// PerformanceSummary is the output of the performance analyzer. Sharpe
// and win rate are pointers: nil means the statistic is undefined for
// this run (zero return variance, or zero closed trades) rather than
// silently zero.
type PerformanceSummary struct {
	InitialValue   float64
	FinalValue     float64
	TotalReturnPct float64
	CAGRPct        float64
	MaxDrawdownPct float64
	SharpeRatio    *float64
	WinRatePct     *float64
	Years          float64
	TotalTrades    int
	ClosedTrades   int
}
