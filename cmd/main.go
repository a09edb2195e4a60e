package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"niftyalpha/internal/app"
	"niftyalpha/internal/calculator"
	"niftyalpha/internal/config"
	"niftyalpha/internal/domain"
	"niftyalpha/internal/export"
	"niftyalpha/internal/ingest"
	"niftyalpha/internal/logger"
	"niftyalpha/internal/repository"
	"niftyalpha/internal/screener"
	"niftyalpha/internal/signal"
	"niftyalpha/internal/util"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "niftyalpha",
		Short: "Momentum screening and backtesting for NSE equities",
		Long: `niftyalpha screens Indian equities on momentum metrics, times entries
with a 44-day EMA, and backtests the combined strategy against the
Nifty 50 benchmark.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "configuration file path")

	rootCmd.AddCommand(newFetchCmd(&configPath))
	rootCmd.AddCommand(newScreenCmd(&configPath))
	rootCmd.AddCommand(newBacktestCmd(&configPath))
	rootCmd.AddCommand(newWatchCmd(&configPath))

	return rootCmd
}

func newFetchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download price history for the configured universe",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New()

			prices, err := repository.Open(cfg.Database.SQLitePath)
			if err != nil {
				return err
			}
			defer prices.Close()

			start, err := time.Parse(time.DateOnly, cfg.Fetch.StartDate)
			if err != nil {
				return fmt.Errorf("invalid fetch.start_date %q: %w", cfg.Fetch.StartDate, err)
			}
			end := time.Now().UTC()

			svc := ingest.Service{Prices: prices, Workers: cfg.Fetch.Workers, Log: log}

			// The benchmark is fetched alone first: without it nothing
			// downstream works, so its failure is fatal where per-symbol
			// failures are not.
			benchmark, err := svc.FetchSymbol(cfg.BenchmarkSymbol, start, end)
			if err != nil {
				return fmt.Errorf("failed to fetch benchmark %s: %w", cfg.BenchmarkSymbol, err)
			}
			if err := prices.Add(cfg.BenchmarkSymbol, benchmark.Bars); err != nil {
				return err
			}
			log.Infow("stored benchmark", "symbol", cfg.BenchmarkSymbol, "bars", benchmark.Len())

			return svc.FetchUniverse(cfg.Universe, start, end)
		},
	}
}

func newScreenCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "screen",
		Short: "Rank the universe and produce the current buy list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runScreen(cfg)
		},
	}
}

func runScreen(cfg *config.Config) error {
	log := logger.New()

	prices, err := repository.Open(cfg.Database.SQLitePath)
	if err != nil {
		return err
	}
	defer prices.Close()

	seriesBySymbol, benchmark, err := loadSeries(cfg, prices)
	if err != nil {
		return err
	}
	lastBar, ok := benchmark.LastBar()
	if !ok {
		return fmt.Errorf("benchmark %s has no stored prices; run fetch first", cfg.BenchmarkSymbol)
	}

	scr, err := screener.New(screenerConfig(cfg))
	if err != nil {
		return err
	}
	gen, err := signalGenerator(cfg)
	if err != nil {
		return err
	}

	handler := app.ScreenHandler{Screener: scr, SignalGenerator: gen, Log: log}
	result, err := handler.Screen(app.ScreenInput{
		PriceSeriesBySymbol: seriesBySymbol,
		BenchmarkSeries:     benchmark,
		AsOf:                lastBar.Date,
	})
	if err != nil {
		return err
	}

	rankedPath := filepath.Join(cfg.Output.Dir, "top_momentum_stocks.csv")
	if err := export.WriteRankedStocks(rankedPath, result.Ranked); err != nil {
		return err
	}
	buyListPath := filepath.Join(cfg.Output.Dir, "buy_list.csv")
	if err := export.WriteBuyList(buyListPath, result.BuyList); err != nil {
		return err
	}

	log.Infow("screen complete",
		"as_of", result.AsOf.Format(time.DateOnly),
		"ranked", len(result.Ranked),
		"buy_candidates", len(result.BuyList),
		"ranked_file", rankedPath,
		"buy_list_file", buyListPath,
	)
	return nil
}

func newBacktestCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "backtest",
		Short: "Simulate the strategy over the configured period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New()

			prices, err := repository.Open(cfg.Database.SQLitePath)
			if err != nil {
				return err
			}
			defer prices.Close()

			seriesBySymbol, benchmark, err := loadSeries(cfg, prices)
			if err != nil {
				return err
			}

			start, end, err := backtestWindow(cfg, benchmark)
			if err != nil {
				return err
			}
			frequency, err := app.ParseRebalanceFrequency(cfg.Backtest.RebalanceFrequency)
			if err != nil {
				return err
			}

			scr, err := screener.New(screenerConfig(cfg))
			if err != nil {
				return err
			}
			gen, err := signalGenerator(cfg)
			if err != nil {
				return err
			}

			runID := uuid.New()
			handler := app.BacktestHandler{Screener: scr, SignalGenerator: gen, Log: log}
			result, err := handler.Run(app.BacktestInput{
				RunID:               runID,
				PriceSeriesBySymbol: seriesBySymbol,
				BenchmarkSeries:     benchmark,
				Start:               start,
				End:                 end,
				RebalanceFrequency:  frequency,
				InitialCapital:      decimal.NewFromFloat(cfg.Backtest.InitialCapital),
			})
			if err != nil {
				return err
			}

			summary, err := calculator.AnalyzePerformance(result.EquityCurve, result.Trades)
			if err != nil {
				return err
			}

			curvePath := filepath.Join(cfg.Output.Dir, "equity_curve.csv")
			if err := export.WriteEquityCurve(curvePath, result.EquityCurve); err != nil {
				return err
			}
			tradesPath := filepath.Join(cfg.Output.Dir, "trades.csv")
			if err := export.WriteTrades(tradesPath, result.Trades); err != nil {
				return err
			}

			log.Infow("backtest complete",
				"run", runID,
				"start", start.Format(time.DateOnly),
				"end", end.Format(time.DateOnly),
				"final_value", summary.FinalValue,
				"total_return_pct", summary.TotalReturnPct,
				"cagr_pct", summary.CAGRPct,
				"max_drawdown_pct", summary.MaxDrawdownPct,
				"sharpe_ratio", formatOptional(summary.SharpeRatio),
				"win_rate_pct", formatOptional(summary.WinRatePct),
				"trades", summary.TotalTrades,
				"equity_curve_file", curvePath,
				"trades_file", tradesPath,
			)
			return nil
		},
	}
}

func newWatchCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the screen on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			log := logger.New()

			c := cron.New()
			_, err = c.AddFunc(cfg.Watch.Cron, func() {
				if err := runScreen(cfg); err != nil {
					log.Errorw("scheduled screen failed", "error", err)
				}
			})
			if err != nil {
				return fmt.Errorf("invalid watch.cron %q: %w", cfg.Watch.Cron, err)
			}

			log.Infow("watching", "cron", cfg.Watch.Cron)
			c.Run()
			return nil
		},
	}
}

// loadSeries pulls the stored series for the whole universe plus the
// benchmark. Symbols without stored data are skipped with a warning.
func loadSeries(cfg *config.Config, prices *repository.PriceRepository) (map[string]*domain.PriceSeries, *domain.PriceSeries, error) {
	log := logger.New()
	start := util.NewDate(2000, 1, 1)
	end := time.Now().UTC()

	benchmark, err := prices.List(cfg.BenchmarkSymbol, start, end)
	if err != nil {
		return nil, nil, err
	}
	if benchmark.Len() == 0 {
		return nil, nil, fmt.Errorf("no stored prices for benchmark %s; run fetch first", cfg.BenchmarkSymbol)
	}

	seriesBySymbol := map[string]*domain.PriceSeries{}
	for _, symbol := range cfg.Universe {
		series, err := prices.List(symbol, start, end)
		if err != nil {
			return nil, nil, err
		}
		if series.Len() == 0 {
			log.Warnw("no stored prices for symbol, skipping", "symbol", symbol)
			continue
		}
		seriesBySymbol[symbol] = series
	}
	if len(seriesBySymbol) == 0 {
		return nil, nil, fmt.Errorf("no stored prices for any universe symbol; run fetch first")
	}

	return seriesBySymbol, benchmark, nil
}

func backtestWindow(cfg *config.Config, benchmark *domain.PriceSeries) (time.Time, time.Time, error) {
	lastBar, _ := benchmark.LastBar()
	end := lastBar.Date
	if cfg.Backtest.EndDate != "" {
		parsed, err := time.Parse(time.DateOnly, cfg.Backtest.EndDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid backtest.end_date: %w", err)
		}
		end = parsed
	}

	start := end.AddDate(-3, 0, 0)
	if cfg.Backtest.StartDate != "" {
		parsed, err := time.Parse(time.DateOnly, cfg.Backtest.StartDate)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid backtest.start_date: %w", err)
		}
		start = parsed
	}

	return start, end, nil
}

func screenerConfig(cfg *config.Config) screener.Config {
	return screener.Config{
		TopN:              cfg.Screen.TopN,
		MinUniverse:       cfg.Screen.MinUniverse,
		MaxRetracementPct: cfg.Screen.MaxRetracementPct,
		ReturnPercentile:  cfg.Screen.ReturnPercentile,
		ReturnWeight:      cfg.Screen.ReturnWeight,
		VolAdjWeight:      cfg.Screen.VolAdjWeight,
		RelStrengthWeight: cfg.Screen.RelStrengthWeight,
		ScoreExpression:   cfg.Screen.ScoreExpression,
	}
}

func signalGenerator(cfg *config.Config) (*signal.Generator, error) {
	gen := &signal.Generator{
		Period:           cfg.Signal.EMAPeriod,
		RisingDays:       cfg.Signal.RisingDays,
		EntryBandPct:     cfg.Signal.EntryBandPct,
		ExitThresholdPct: cfg.Signal.ExitThresholdPct,
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return gen, nil
}

func formatOptional(v *float64) string {
	if v == nil {
		return "undefined"
	}
	return fmt.Sprintf("%.2f", *v)
}
