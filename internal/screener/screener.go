package screener

import (
	"fmt"
	"sort"
	"time"

	"niftyalpha/internal/domain"

	"github.com/maja42/goval"
	"github.com/montanaflynn/stats"
)

type Config struct {
	// TopN caps the ranked output. Fewer survivors than TopN is fine;
	// fewer than MinUniverse is InsufficientUniverse.
	TopN        int
	MinUniverse int

	MaxRetracementPct float64
	// ReturnPercentile is the percentile of surviving 6-month returns an
	// instrument must meet or beat (50 = median).
	ReturnPercentile float64

	ReturnWeight      float64
	VolAdjWeight      float64
	RelStrengthWeight float64

	// ScoreExpression optionally replaces the weighted score with a
	// goval expression over the metric variables (return_3m, return_6m,
	// vol_adj_return, relative_strength, volatility, retracement, price).
	ScoreExpression string
}

func DefaultConfig() Config {
	return Config{
		TopN:              20,
		MinUniverse:       20,
		MaxRetracementPct: 30,
		ReturnPercentile:  50,
		ReturnWeight:      0.40,
		VolAdjWeight:      0.30,
		RelStrengthWeight: 0.30,
	}
}

func (c Config) Validate() error {
	if c.TopN <= 0 {
		return fmt.Errorf("top N must be positive, got %d", c.TopN)
	}
	if c.MinUniverse <= 0 {
		return fmt.Errorf("minimum universe must be positive, got %d", c.MinUniverse)
	}
	if c.ReturnPercentile <= 0 || c.ReturnPercentile >= 100 {
		return fmt.Errorf("return percentile must be in (0, 100), got %f", c.ReturnPercentile)
	}
	if c.ScoreExpression == "" {
		if c.ReturnWeight < 0 || c.VolAdjWeight < 0 || c.RelStrengthWeight < 0 {
			return fmt.Errorf("score weights must be non-negative")
		}
		if c.ReturnWeight+c.VolAdjWeight+c.RelStrengthWeight <= 0 {
			return fmt.Errorf("score weights must sum to a positive value")
		}
	}
	return nil
}

type Screener struct {
	cfg Config
}

func New(cfg Config) (*Screener, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid screener config: %w", err)
	}
	return &Screener{cfg: cfg}, nil
}

// ScoreAndRank filters the universe and produces the ranked composite
// scores for one evaluation date. Filters short-circuit in a fixed
// order: retracement, return percentile, relative strength. Ranking is
// descending by score with lexicographic symbol tie-break, truncated to
// TopN. Output order is the total order; re-running with identical
// input produces identical output.
func (s *Screener) ScoreAndRank(metricsBySymbol map[string]*domain.MomentumMetrics, asOf time.Time) ([]domain.CompositeScore, error) {
	symbols := make([]string, 0, len(metricsBySymbol))
	for symbol := range metricsBySymbol {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	// Filter 1: retracement from 52-week high.
	var survivors []*domain.MomentumMetrics
	for _, symbol := range symbols {
		m := metricsBySymbol[symbol]
		if m.RetracementPct <= s.cfg.MaxRetracementPct {
			survivors = append(survivors, m)
		}
	}

	// Filter 2: 6-month return at or above the configured percentile of
	// the set that survived filter 1.
	if len(survivors) > 0 {
		returns := make([]float64, len(survivors))
		for i, m := range survivors {
			returns[i] = m.Return6M
		}
		threshold, err := stats.Percentile(returns, s.cfg.ReturnPercentile)
		if err != nil {
			return nil, fmt.Errorf("failed to compute return percentile: %w", err)
		}
		kept := survivors[:0]
		for _, m := range survivors {
			if m.Return6M >= threshold {
				kept = append(kept, m)
			}
		}
		survivors = kept
	}

	// Filter 3: outperforming the benchmark.
	{
		kept := survivors[:0]
		for _, m := range survivors {
			if m.RelativeStrength > 0 {
				kept = append(kept, m)
			}
		}
		survivors = kept
	}

	if len(survivors) < s.cfg.MinUniverse {
		return nil, domain.InsufficientUniverseError{
			Date:      asOf,
			Survivors: len(survivors),
			Min:       s.cfg.MinUniverse,
		}
	}

	scores := make([]domain.CompositeScore, 0, len(survivors))
	for _, m := range survivors {
		score, err := s.score(m)
		if err != nil {
			return nil, err
		}
		scores = append(scores, domain.CompositeScore{
			Symbol:  m.Symbol,
			Score:   score,
			Metrics: *m,
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].Symbol < scores[j].Symbol
	})

	if len(scores) > s.cfg.TopN {
		scores = scores[:s.cfg.TopN]
	}
	for i := range scores {
		scores[i].Rank = i + 1
	}

	return scores, nil
}

func (s *Screener) score(m *domain.MomentumMetrics) (float64, error) {
	if s.cfg.ScoreExpression != "" {
		return s.evaluateExpression(m)
	}
	return s.cfg.ReturnWeight*m.Return6M +
		s.cfg.VolAdjWeight*m.VolAdjReturn +
		s.cfg.RelStrengthWeight*(m.RelativeStrength*100), nil
}

func (s *Screener) evaluateExpression(m *domain.MomentumMetrics) (float64, error) {
	eval := goval.NewEvaluator()
	variables := map[string]interface{}{
		"price":             m.CurrentPrice,
		"retracement":       m.RetracementPct,
		"return_3m":         m.Return3M,
		"return_6m":         m.Return6M,
		"volatility":        m.Volatility,
		"vol_adj_return":    m.VolAdjReturn,
		"relative_strength": m.RelativeStrength,
	}
	result, err := eval.Evaluate(s.cfg.ScoreExpression, variables, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to evaluate score expression for %s: %w", m.Symbol, err)
	}
	switch v := result.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("score expression for %s evaluated to non-numeric %T", m.Symbol, result)
	}
}
