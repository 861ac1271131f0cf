package config

import (
	"errors"
	"fmt"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
)

// Validate reports values a consumer is likely to choke on. Load never
// calls it; the registry accepts whatever the environment provides.
func (c *Config) Validate() error {
	var errs []error
	add := func(op, format string, args ...interface{}) {
		errs = append(errs, apperrors.NewConfigurationError("config", op, fmt.Sprintf(format, args...)))
	}

	d := c.Data
	if d.DefaultTimeframe == "" {
		add("data", "default timeframe must not be empty")
	}
	if d.LookbackPeriods <= 0 {
		add("data", "lookback periods must be positive, got: %d", d.LookbackPeriods)
	}
	if !isFraction(d.TrainTestSplit) {
		add("data", "train/test split must be within [0,1], got: %.4f", d.TrainTestSplit)
	}
	if !isFraction(d.ValidationSplit) {
		add("data", "validation split must be within [0,1], got: %.4f", d.ValidationSplit)
	}
	if d.TrainTestSplit+d.ValidationSplit > 1 {
		add("data", "train and validation splits exceed 1: %.4f + %.4f", d.TrainTestSplit, d.ValidationSplit)
	}
	if len(d.Symbols) == 0 {
		add("data", "at least one symbol is required")
	}
	if len(d.DataSources) == 0 {
		add("data", "at least one data source is required")
	}

	s := c.Strategy
	if s.MaxIndicatorsPerStrategy <= 0 || s.MaxRulesPerStrategy <= 0 {
		add("strategy", "indicator and rule limits must be positive")
	}
	if !isFraction(s.MinConfidenceThreshold) {
		add("strategy", "confidence threshold must be within [0,1], got: %.4f", s.MinConfidenceThreshold)
	}
	if s.PopulationSize <= 0 {
		add("strategy", "population size must be positive, got: %d", s.PopulationSize)
	}
	if s.EliteSize < 0 || s.EliteSize > s.PopulationSize {
		add("strategy", "elite size must be within [0,%d], got: %d", s.PopulationSize, s.EliteSize)
	}

	b := c.Backtest
	if b.InitialCapital <= 0 {
		add("backtest", "initial capital must be positive, got: %.2f", b.InitialCapital)
	}
	if !isFraction(b.Commission) || !isFraction(b.Slippage) {
		add("backtest", "commission and slippage must be within [0,1]")
	}
	if !isFraction(b.MaxDrawdownLimit) {
		add("backtest", "max drawdown limit must be within [0,1], got: %.4f", b.MaxDrawdownLimit)
	}

	r := c.RL
	if r.LearningRate <= 0 {
		add("rl", "learning rate must be positive, got: %g", r.LearningRate)
	}
	if !isFraction(r.DiscountFactor) || !isFraction(r.ExplorationRate) || !isFraction(r.ExplorationDecay) {
		add("rl", "discount and exploration parameters must be within [0,1]")
	}
	if r.BatchSize <= 0 || r.MemorySize < r.BatchSize {
		add("rl", "memory size (%d) must hold at least one batch (%d)", r.MemorySize, r.BatchSize)
	}

	if c.Logging.BackupCount < 0 {
		add("logging", "backup count must not be negative, got: %d", c.Logging.BackupCount)
	}

	return errors.Join(errs...)
}

func isFraction(v float64) bool {
	return v >= 0 && v <= 1
}
