package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all toolkit configuration. Zero values are filled from
// Default before the YAML file and environment overrides apply, and the
// result is validated fatally: an invalid config never reaches the
// engine.
type Config struct {
	Universe        []string `yaml:"universe"`
	BenchmarkSymbol string   `yaml:"benchmark_symbol"`

	Screen struct {
		TopN              int     `yaml:"top_n"`
		MinUniverse       int     `yaml:"min_universe"`
		MaxRetracementPct float64 `yaml:"max_retracement_pct"`
		ReturnPercentile  float64 `yaml:"return_percentile"`
		ReturnWeight      float64 `yaml:"return_weight"`
		VolAdjWeight      float64 `yaml:"vol_adj_weight"`
		RelStrengthWeight float64 `yaml:"rel_strength_weight"`
		ScoreExpression   string  `yaml:"score_expression"`
	} `yaml:"screen"`

	Signal struct {
		EMAPeriod        int     `yaml:"ema_period"`
		RisingDays       int     `yaml:"rising_days"`
		EntryBandPct     float64 `yaml:"entry_band_pct"`
		ExitThresholdPct float64 `yaml:"exit_threshold_pct"`
	} `yaml:"signal"`

	Backtest struct {
		StartDate          string  `yaml:"start_date"`
		EndDate            string  `yaml:"end_date"`
		RebalanceFrequency string  `yaml:"rebalance_frequency"`
		InitialCapital     float64 `yaml:"initial_capital"`
	} `yaml:"backtest"`

	Fetch struct {
		Workers   int    `yaml:"workers"`
		StartDate string `yaml:"start_date"`
	} `yaml:"fetch"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`

	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	Watch struct {
		Cron string `yaml:"cron"`
	} `yaml:"watch"`
}

func Default() *Config {
	cfg := &Config{
		Universe:        defaultUniverse,
		BenchmarkSymbol: "^NSEI",
	}
	cfg.Screen.TopN = 20
	cfg.Screen.MinUniverse = 20
	cfg.Screen.MaxRetracementPct = 30
	cfg.Screen.ReturnPercentile = 50
	cfg.Screen.ReturnWeight = 0.40
	cfg.Screen.VolAdjWeight = 0.30
	cfg.Screen.RelStrengthWeight = 0.30
	cfg.Signal.EMAPeriod = 44
	cfg.Signal.RisingDays = 5
	cfg.Signal.EntryBandPct = 1.0
	cfg.Signal.ExitThresholdPct = -2.0
	cfg.Backtest.RebalanceFrequency = "monthly"
	cfg.Backtest.InitialCapital = 100000
	cfg.Fetch.Workers = 8
	cfg.Fetch.StartDate = "2018-01-01"
	cfg.Database.SQLitePath = "niftyalpha.db"
	cfg.Output.Dir = "output"
	cfg.Watch.Cron = "30 9 * * MON-FRI"
	return cfg
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("NIFTYALPHA_DB_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("NIFTYALPHA_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("NIFTYALPHA_BENCHMARK"); v != "" {
		cfg.BenchmarkSymbol = v
	}
	if v := os.Getenv("NIFTYALPHA_FETCH_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Fetch.Workers = workers
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configuration that would corrupt a run. These are
// fatal at start; nothing simulates on a bad config.
func (c *Config) Validate() error {
	if len(c.Universe) == 0 {
		return fmt.Errorf("config: universe is empty")
	}
	if c.BenchmarkSymbol == "" {
		return fmt.Errorf("config: benchmark symbol is empty")
	}
	if c.Screen.TopN <= 0 {
		return fmt.Errorf("config: screen.top_n must be positive, got %d", c.Screen.TopN)
	}
	if c.Screen.MinUniverse <= 0 {
		return fmt.Errorf("config: screen.min_universe must be positive, got %d", c.Screen.MinUniverse)
	}
	if c.Screen.ReturnPercentile <= 0 || c.Screen.ReturnPercentile >= 100 {
		return fmt.Errorf("config: screen.return_percentile must be in (0, 100), got %f", c.Screen.ReturnPercentile)
	}
	if c.Screen.ScoreExpression == "" {
		if c.Screen.ReturnWeight < 0 || c.Screen.VolAdjWeight < 0 || c.Screen.RelStrengthWeight < 0 {
			return fmt.Errorf("config: screen weights must be non-negative")
		}
		if c.Screen.ReturnWeight+c.Screen.VolAdjWeight+c.Screen.RelStrengthWeight <= 0 {
			return fmt.Errorf("config: screen weights must sum to a positive value")
		}
	}
	if c.Signal.EMAPeriod <= 0 {
		return fmt.Errorf("config: signal.ema_period must be positive, got %d", c.Signal.EMAPeriod)
	}
	if c.Signal.RisingDays <= 0 {
		return fmt.Errorf("config: signal.rising_days must be positive, got %d", c.Signal.RisingDays)
	}
	if c.Signal.EntryBandPct <= 0 {
		return fmt.Errorf("config: signal.entry_band_pct must be positive, got %f", c.Signal.EntryBandPct)
	}
	if c.Signal.ExitThresholdPct >= -c.Signal.EntryBandPct {
		return fmt.Errorf("config: signal.exit_threshold_pct %f overlaps entry band ±%f",
			c.Signal.ExitThresholdPct, c.Signal.EntryBandPct)
	}
	if c.Backtest.InitialCapital <= 0 {
		return fmt.Errorf("config: backtest.initial_capital must be positive, got %f", c.Backtest.InitialCapital)
	}
	switch c.Backtest.RebalanceFrequency {
	case "weekly", "monthly", "quarterly":
	default:
		return fmt.Errorf("config: backtest.rebalance_frequency must be weekly, monthly or quarterly, got %q",
			c.Backtest.RebalanceFrequency)
	}
	if c.Fetch.Workers <= 0 {
		return fmt.Errorf("config: fetch.workers must be positive, got %d", c.Fetch.Workers)
	}
	return nil
}
