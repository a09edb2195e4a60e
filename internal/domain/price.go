package domain

import (
	"fmt"
	"time"
)

// Bar is one trading day of OHLCV data for a single instrument.
type Bar struct {
	Date     time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   int64
}

// PriceSeries is an ordered-by-date sequence of bars for one instrument.
// Dates are strictly increasing; NewPriceSeries rejects anything else.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
}

func NewPriceSeries(symbol string, bars []Bar) (*PriceSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("price series requires a symbol")
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Date.Before(bars[i].Date) {
			return nil, fmt.Errorf(
				"price series for %s not strictly increasing: %s followed by %s",
				symbol,
				bars[i-1].Date.Format(time.DateOnly),
				bars[i].Date.Format(time.DateOnly),
			)
		}
	}
	return &PriceSeries{Symbol: symbol, Bars: bars}, nil
}

func (s *PriceSeries) Len() int {
	return len(s.Bars)
}

// Through returns the prefix of the series with dates <= date. The
// returned series shares the underlying bar slice.
func (s *PriceSeries) Through(date time.Time) *PriceSeries {
	n := len(s.Bars)
	for n > 0 && s.Bars[n-1].Date.After(date) {
		n--
	}
	return &PriceSeries{Symbol: s.Symbol, Bars: s.Bars[:n]}
}

// Closes returns the close prices in date order.
func (s *PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		closes[i] = b.Close
	}
	return closes
}

// LastBar returns the most recent bar. ok is false on an empty series.
func (s *PriceSeries) LastBar() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Dates returns the trading dates of the series. The benchmark's dates
// double as the trading calendar during a backtest.
func (s *PriceSeries) Dates() []time.Time {
	dates := make([]time.Time, len(s.Bars))
	for i, b := range s.Bars {
		dates[i] = b.Date
	}
	return dates
}
