package ingest

import (
	"fmt"
	"sync"
	"time"

	"niftyalpha/internal/domain"
	"niftyalpha/internal/repository"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"go.uber.org/zap"
)

// Service downloads daily bars from Yahoo Finance into the local price
// store. Fetching is the only concurrent part of the toolkit: a bounded
// worker pool fans out over the universe and fans results back in; the
// engine itself stays single threaded.
type Service struct {
	Prices  *repository.PriceRepository
	Workers int
	Log     *zap.SugaredLogger
}

// FetchSymbol pulls the full daily history for one symbol between start
// and end.
func (s Service) FetchSymbol(symbol string, start, end time.Time) (*domain.PriceSeries, error) {
	params := &chart.Params{
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Symbol:   symbol,
		Interval: datetime.OneDay,
	}
	iter := chart.Get(params)

	bars := []domain.Bar{}
	for iter.Next() {
		b := iter.Bar()
		bars = append(bars, domain.Bar{
			Date:     time.Unix(int64(b.Timestamp), 0).UTC().Truncate(24 * time.Hour),
			Open:     b.Open.InexactFloat64(),
			High:     b.High.InexactFloat64(),
			Low:      b.Low.InexactFloat64(),
			Close:    b.Close.InexactFloat64(),
			AdjClose: b.AdjClose.InexactFloat64(),
			Volume:   int64(b.Volume),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to get prices for %s: %w", symbol, err)
	}

	return domain.NewPriceSeries(symbol, bars)
}

// FetchUniverse downloads every symbol concurrently and persists the
// results. Per-symbol failures are logged and skipped; the call fails
// only when nothing could be fetched.
func (s Service) FetchUniverse(symbols []string, start, end time.Time) error {
	workers := s.Workers
	if workers <= 0 {
		workers = 1
	}

	type fetchResult struct {
		symbol string
		series *domain.PriceSeries
		err    error
	}

	jobs := make(chan string)
	results := make(chan fetchResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for symbol := range jobs {
				series, err := s.FetchSymbol(symbol, start, end)
				results <- fetchResult{symbol: symbol, series: series, err: err}
			}
		}()
	}

	go func() {
		for _, symbol := range symbols {
			jobs <- symbol
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	fetched := 0
	for result := range results {
		if result.err != nil {
			s.Log.Warnw("failed to fetch symbol", "symbol", result.symbol, "error", result.err)
			continue
		}
		if result.series.Len() == 0 {
			s.Log.Warnw("no data returned for symbol", "symbol", result.symbol)
			continue
		}
		if err := s.Prices.Add(result.symbol, result.series.Bars); err != nil {
			return fmt.Errorf("failed to store prices for %s: %w", result.symbol, err)
		}
		fetched++
		s.Log.Infow("stored prices", "symbol", result.symbol, "bars", result.series.Len())
	}

	if fetched == 0 {
		return fmt.Errorf("failed to fetch any of %d symbols", len(symbols))
	}
	s.Log.Infow("fetch complete", "fetched", fetched, "requested", len(symbols))
	return nil
}
