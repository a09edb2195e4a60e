package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"niftyalpha/internal/app"
	"niftyalpha/internal/domain"

	"github.com/gocarina/gocsv"
)

// Column sets below are stable across runs; downstream tooling reads
// these files by header name.

type rankedStockRow struct {
	Rank             int     `csv:"rank"`
	Symbol           string  `csv:"symbol"`
	CompositeScore   float64 `csv:"composite_score"`
	CurrentPrice     float64 `csv:"current_price"`
	High52W          float64 `csv:"high_52w"`
	RetracementPct   float64 `csv:"retracement_pct"`
	Return3M         float64 `csv:"return_3m"`
	Return6M         float64 `csv:"return_6m"`
	Volatility       float64 `csv:"volatility"`
	VolAdjReturn     float64 `csv:"vol_adj_return"`
	RelativeStrength float64 `csv:"relative_strength"`
}

type buyListRow struct {
	Symbol       string  `csv:"symbol"`
	Rank         int     `csv:"rank"`
	EntryPrice   float64 `csv:"entry_price"`
	EMA          float64 `csv:"ema"`
	DeviationPct float64 `csv:"deviation_pct"`
}

type equityCurveRow struct {
	Date           string `csv:"date"`
	TotalValue     string `csv:"total_value"`
	Cash           string `csv:"cash"`
	PositionsValue string `csv:"positions_value"`
	NumPositions   int    `csv:"num_positions"`
}

type tradeRow struct {
	Date   string  `csv:"date"`
	Symbol string  `csv:"symbol"`
	Action string  `csv:"action"`
	Price  string  `csv:"price"`
	Shares int64   `csv:"shares"`
	PnL    string  `csv:"pnl"`
	PnLPct float64 `csv:"pnl_pct"`
	Reason string  `csv:"reason"`
}

func WriteRankedStocks(path string, scores []domain.CompositeScore) error {
	rows := make([]rankedStockRow, 0, len(scores))
	for _, s := range scores {
		rows = append(rows, rankedStockRow{
			Rank:             s.Rank,
			Symbol:           s.Symbol,
			CompositeScore:   s.Score,
			CurrentPrice:     s.Metrics.CurrentPrice,
			High52W:          s.Metrics.High52W,
			RetracementPct:   s.Metrics.RetracementPct,
			Return3M:         s.Metrics.Return3M,
			Return6M:         s.Metrics.Return6M,
			Volatility:       s.Metrics.Volatility,
			VolAdjReturn:     s.Metrics.VolAdjReturn,
			RelativeStrength: s.Metrics.RelativeStrength,
		})
	}
	return writeFile(path, &rows)
}

func WriteBuyList(path string, candidates []app.BuyCandidate) error {
	rows := make([]buyListRow, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, buyListRow{
			Symbol:       c.Symbol,
			Rank:         c.Rank,
			EntryPrice:   c.Price,
			EMA:          c.EMA,
			DeviationPct: c.DeviationPct,
		})
	}
	return writeFile(path, &rows)
}

func WriteEquityCurve(path string, curve []domain.EquityPoint) error {
	rows := make([]equityCurveRow, 0, len(curve))
	for _, p := range curve {
		rows = append(rows, equityCurveRow{
			Date:           p.Date.Format(time.DateOnly),
			TotalValue:     p.TotalValue.StringFixed(2),
			Cash:           p.Cash.StringFixed(2),
			PositionsValue: p.PositionsValue.StringFixed(2),
			NumPositions:   p.NumPositions,
		})
	}
	return writeFile(path, &rows)
}

func WriteTrades(path string, trades []domain.Trade) error {
	rows := make([]tradeRow, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, tradeRow{
			Date:   t.Date.Format(time.DateOnly),
			Symbol: t.Symbol,
			Action: string(t.Action),
			Price:  t.Price.StringFixed(2),
			Shares: t.Shares,
			PnL:    t.PnL.StringFixed(2),
			PnLPct: t.PnLPct,
			Reason: t.Reason,
		})
	}
	return writeFile(path, &rows)
}

func writeFile(path string, rows interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(rows, f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
