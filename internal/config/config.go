package config

import (
	"os"
)

// Environment variables that may override storage and logging defaults.
const (
	EnvFirebaseCredentialsPath = "FIREBASE_CREDENTIALS_PATH"
	EnvFirestoreCollection     = "FIRESTORE_COLLECTION"
	EnvFirebaseRealtimeDBURL   = "FIREBASE_REALTIME_DB_URL"
	EnvLogLevel                = "LOG_LEVEL"
)

// Literal defaults
const (
	DefaultFirebaseCredentialsPath = "firebase_credentials.json"
	DefaultFirestoreCollection     = "agts_strategies"

	DefaultTimeframe       = "1h"
	DefaultLookbackPeriods = 5000
	DefaultTrainTestSplit  = 0.8
	DefaultValidationSplit = 0.1

	DefaultMaxIndicatorsPerStrategy = 5
	DefaultMaxRulesPerStrategy      = 10
	DefaultMinConfidenceThreshold   = 0.7
	DefaultPopulationSize           = 100
	DefaultEliteSize                = 10

	DefaultInitialCapital   = 100000.0
	DefaultCommission       = 0.001  // 0.1%
	DefaultSlippage         = 0.0005 // 0.05%
	DefaultRiskFreeRate     = 0.02
	DefaultMaxDrawdownLimit = 0.2 // 20%

	DefaultLearningRate     = 0.001
	DefaultDiscountFactor   = 0.99
	DefaultBatchSize        = 32
	DefaultMemorySize       = 10000
	DefaultExplorationRate  = 0.3
	DefaultExplorationDecay = 0.995

	DefaultLogLevel    = "INFO"
	DefaultLogFile     = "agts_system.log"
	DefaultMaxFileSize = "10MB"
	DefaultBackupCount = 5
)

// Data source identifiers understood by the data layer.
const (
	SourceExchange = "ccxt"
	SourceYahoo    = "yfinance"
	SourceAlpaca   = "alpaca"
	SourceCSV      = "csv"
)

// DefaultSymbols returns a fresh copy of the default instrument list.
func DefaultSymbols() []string {
	return []string{"BTC/USDT", "ETH/USDT", "AAPL", "MSFT"}
}

// DefaultDataSources returns a fresh copy of the default source list.
func DefaultDataSources() []string {
	return []string{SourceExchange, SourceYahoo, SourceAlpaca}
}

// DatabaseConfig holds the document store settings
type DatabaseConfig struct {
	FirebaseCredentialsPath string  `json:"firebase_credentials_path"`
	FirestoreCollection     string  `json:"firestore_collection"`
	RealtimeDBURL           *string `json:"realtime_db_url,omitempty"` // nil when not configured
}

// HasRealtimeDB reports whether a realtime endpoint was configured.
func (c DatabaseConfig) HasRealtimeDB() bool {
	return c.RealtimeDBURL != nil
}

// DataConfig holds data fetching and preprocessing settings
type DataConfig struct {
	DefaultTimeframe string   `json:"default_timeframe"`
	LookbackPeriods  int      `json:"lookback_periods"`
	TrainTestSplit   float64  `json:"train_test_split"`
	ValidationSplit  float64  `json:"validation_split"`
	Symbols          []string `json:"symbols"`
	DataSources      []string `json:"data_sources"`
}

// StrategyConfig holds strategy generation settings
type StrategyConfig struct {
	MaxIndicatorsPerStrategy int     `json:"max_indicators_per_strategy"`
	MaxRulesPerStrategy      int     `json:"max_rules_per_strategy"`
	MinConfidenceThreshold   float64 `json:"min_confidence_threshold"`
	PopulationSize           int     `json:"population_size"`
	EliteSize                int     `json:"elite_size"`
}

// BacktestConfig holds backtesting settings
type BacktestConfig struct {
	InitialCapital   float64 `json:"initial_capital"`
	Commission       float64 `json:"commission"`
	Slippage         float64 `json:"slippage"`
	RiskFreeRate     float64 `json:"risk_free_rate"`
	MaxDrawdownLimit float64 `json:"max_drawdown_limit"`
}

// RLConfig holds reinforcement learning settings
type RLConfig struct {
	LearningRate     float64 `json:"learning_rate"`
	DiscountFactor   float64 `json:"discount_factor"`
	BatchSize        int     `json:"batch_size"`
	MemorySize       int     `json:"memory_size"`
	ExplorationRate  float64 `json:"exploration_rate"`
	ExplorationDecay float64 `json:"exploration_decay"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	LogLevel    string `json:"log_level"`
	LogFile     string `json:"log_file"`
	MaxFileSize string `json:"max_file_size"` // human readable, e.g. "10MB"
	BackupCount int    `json:"backup_count"`
}

// Config is the root snapshot of every parameter group. A snapshot is built
// once by Load and must be treated as read-only by its consumers.
type Config struct {
	Database DatabaseConfig `json:"database"`
	Data     DataConfig     `json:"data"`
	Strategy StrategyConfig `json:"strategy"`
	Backtest BacktestConfig `json:"backtest"`
	RL       RLConfig       `json:"rl"`
	Logging  LoggingConfig  `json:"logging"`
}

// LookupFunc resolves an environment variable. It has the shape of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load builds a new snapshot from the current process environment.
func Load() *Config {
	return LoadFromLookup(os.LookupEnv)
}

// Default returns the snapshot produced by an empty environment.
func Default() *Config {
	return LoadFromLookup(func(string) (string, bool) { return "", false })
}

// LoadFromLookup builds a new snapshot, resolving override-eligible fields
// through lookup. Values are taken verbatim; unset or empty falls back.
func LoadFromLookup(lookup LookupFunc) *Config {
	env := envReader{lookup: lookup}

	return &Config{
		Database: DatabaseConfig{
			FirebaseCredentialsPath: env.get(EnvFirebaseCredentialsPath, DefaultFirebaseCredentialsPath),
			FirestoreCollection:     env.get(EnvFirestoreCollection, DefaultFirestoreCollection),
			RealtimeDBURL:           env.optional(EnvFirebaseRealtimeDBURL),
		},
		Data: DataConfig{
			DefaultTimeframe: DefaultTimeframe,
			LookbackPeriods:  DefaultLookbackPeriods,
			TrainTestSplit:   DefaultTrainTestSplit,
			ValidationSplit:  DefaultValidationSplit,
			Symbols:          DefaultSymbols(),
			DataSources:      DefaultDataSources(),
		},
		Strategy: StrategyConfig{
			MaxIndicatorsPerStrategy: DefaultMaxIndicatorsPerStrategy,
			MaxRulesPerStrategy:      DefaultMaxRulesPerStrategy,
			MinConfidenceThreshold:   DefaultMinConfidenceThreshold,
			PopulationSize:           DefaultPopulationSize,
			EliteSize:                DefaultEliteSize,
		},
		Backtest: BacktestConfig{
			InitialCapital:   DefaultInitialCapital,
			Commission:       DefaultCommission,
			Slippage:         DefaultSlippage,
			RiskFreeRate:     DefaultRiskFreeRate,
			MaxDrawdownLimit: DefaultMaxDrawdownLimit,
		},
		RL: RLConfig{
			LearningRate:     DefaultLearningRate,
			DiscountFactor:   DefaultDiscountFactor,
			BatchSize:        DefaultBatchSize,
			MemorySize:       DefaultMemorySize,
			ExplorationRate:  DefaultExplorationRate,
			ExplorationDecay: DefaultExplorationDecay,
		},
		Logging: LoggingConfig{
			LogLevel:    env.get(EnvLogLevel, DefaultLogLevel),
			LogFile:     DefaultLogFile,
			MaxFileSize: DefaultMaxFileSize,
			BackupCount: DefaultBackupCount,
		},
	}
}

// Clone returns a deep copy, so a caller can derive a variant without
// touching the snapshot it was handed.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.Database.RealtimeDBURL != nil {
		url := *c.Database.RealtimeDBURL
		clone.Database.RealtimeDBURL = &url
	}
	clone.Data.Symbols = append([]string(nil), c.Data.Symbols...)
	clone.Data.DataSources = append([]string(nil), c.Data.DataSources...)
	return &clone
}
