package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestLoad_DefaultsWithEmptyEnvironment(t *testing.T) {
	cfg := LoadFromLookup(mapLookup(nil))

	assert.Equal(t, "firebase_credentials.json", cfg.Database.FirebaseCredentialsPath)
	assert.Equal(t, "agts_strategies", cfg.Database.FirestoreCollection)
	assert.Nil(t, cfg.Database.RealtimeDBURL)
	assert.False(t, cfg.Database.HasRealtimeDB())

	assert.Equal(t, "1h", cfg.Data.DefaultTimeframe)
	assert.Equal(t, 5000, cfg.Data.LookbackPeriods)
	assert.Equal(t, 0.8, cfg.Data.TrainTestSplit)
	assert.Equal(t, 0.1, cfg.Data.ValidationSplit)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "AAPL", "MSFT"}, cfg.Data.Symbols)
	assert.Equal(t, []string{"ccxt", "yfinance", "alpaca"}, cfg.Data.DataSources)

	assert.Equal(t, 5, cfg.Strategy.MaxIndicatorsPerStrategy)
	assert.Equal(t, 10, cfg.Strategy.MaxRulesPerStrategy)
	assert.Equal(t, 0.7, cfg.Strategy.MinConfidenceThreshold)
	assert.Equal(t, 100, cfg.Strategy.PopulationSize)
	assert.Equal(t, 10, cfg.Strategy.EliteSize)

	assert.Equal(t, 100000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 0.001, cfg.Backtest.Commission)
	assert.Equal(t, 0.0005, cfg.Backtest.Slippage)
	assert.Equal(t, 0.02, cfg.Backtest.RiskFreeRate)
	assert.Equal(t, 0.2, cfg.Backtest.MaxDrawdownLimit)

	assert.Equal(t, 0.001, cfg.RL.LearningRate)
	assert.Equal(t, 0.99, cfg.RL.DiscountFactor)
	assert.Equal(t, 32, cfg.RL.BatchSize)
	assert.Equal(t, 10000, cfg.RL.MemorySize)
	assert.Equal(t, 0.3, cfg.RL.ExplorationRate)
	assert.Equal(t, 0.995, cfg.RL.ExplorationDecay)

	assert.Equal(t, "INFO", cfg.Logging.LogLevel)
	assert.Equal(t, "agts_system.log", cfg.Logging.LogFile)
	assert.Equal(t, "10MB", cfg.Logging.MaxFileSize)
	assert.Equal(t, 5, cfg.Logging.BackupCount)
}

func TestLoad_OverridesAreVerbatim(t *testing.T) {
	cfg := LoadFromLookup(mapLookup(map[string]string{
		EnvFirebaseCredentialsPath: " /secrets/creds.json ",
		EnvFirestoreCollection:     "Research_Strategies",
		EnvFirebaseRealtimeDBURL:   "https://agts.firebaseio.com",
		EnvLogLevel:                "not-a-level",
	}))

	assert.Equal(t, " /secrets/creds.json ", cfg.Database.FirebaseCredentialsPath)
	assert.Equal(t, "Research_Strategies", cfg.Database.FirestoreCollection)
	require.NotNil(t, cfg.Database.RealtimeDBURL)
	assert.Equal(t, "https://agts.firebaseio.com", *cfg.Database.RealtimeDBURL)
	assert.True(t, cfg.Database.HasRealtimeDB())
	assert.Equal(t, "not-a-level", cfg.Logging.LogLevel)
}

func TestLoad_EmptyValuesFallBack(t *testing.T) {
	cfg := LoadFromLookup(mapLookup(map[string]string{
		EnvFirebaseCredentialsPath: "",
		EnvFirestoreCollection:     "",
		EnvFirebaseRealtimeDBURL:   "",
		EnvLogLevel:                "",
	}))

	assert.Equal(t, DefaultFirebaseCredentialsPath, cfg.Database.FirebaseCredentialsPath)
	assert.Equal(t, DefaultFirestoreCollection, cfg.Database.FirestoreCollection)
	assert.Nil(t, cfg.Database.RealtimeDBURL)
	assert.Equal(t, DefaultLogLevel, cfg.Logging.LogLevel)
}

func TestLoad_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvFirestoreCollection, "")

	cfg := Load()

	assert.Equal(t, "DEBUG", cfg.Logging.LogLevel)
	assert.Equal(t, "agts_strategies", cfg.Database.FirestoreCollection)
}

func TestLoad_NonOverrideFieldsIgnoreEnvironment(t *testing.T) {
	t.Setenv("POPULATION_SIZE", "7")
	t.Setenv("COMMISSION", "0.5")
	t.Setenv("EXPLORATION_DECAY", "0.1")
	t.Setenv("LOG_FILE", "other.log")

	cfg := Load()

	assert.Equal(t, 100, cfg.Strategy.PopulationSize)
	assert.Equal(t, 0.001, cfg.Backtest.Commission)
	assert.Equal(t, 0.995, cfg.RL.ExplorationDecay)
	assert.Equal(t, "agts_system.log", cfg.Logging.LogFile)
}

func TestLoad_RepeatedLoadsAreEqualAndIndependent(t *testing.T) {
	t.Setenv(EnvFirebaseRealtimeDBURL, "https://rt.example")

	first := Load()
	second := Load()
	require.Equal(t, first, second)

	first.Data.Symbols[0] = "DOGE/USDT"
	*first.Database.RealtimeDBURL = "mutated"

	assert.Equal(t, "BTC/USDT", second.Data.Symbols[0])
	assert.Equal(t, "https://rt.example", *second.Database.RealtimeDBURL)
	assert.Equal(t, []string{"BTC/USDT", "ETH/USDT", "AAPL", "MSFT"}, DefaultSymbols())
}

func TestLoad_ReflectsEnvironmentChangesOnReload(t *testing.T) {
	t.Setenv(EnvLogLevel, "WARNING")
	before := Load()

	t.Setenv(EnvLogLevel, "ERROR")
	after := Load()

	assert.Equal(t, "WARNING", before.Logging.LogLevel)
	assert.Equal(t, "ERROR", after.Logging.LogLevel)
}

func TestDefault_MatchesEmptyLookup(t *testing.T) {
	t.Setenv(EnvLogLevel, "DEBUG")

	assert.Equal(t, LoadFromLookup(mapLookup(nil)), Default())
}

func TestClone_IsDeep(t *testing.T) {
	cfg := LoadFromLookup(mapLookup(map[string]string{EnvFirebaseRealtimeDBURL: "https://rt"}))
	clone := cfg.Clone()
	require.Equal(t, cfg, clone)

	clone.Data.DataSources[0] = "csv"
	*clone.Database.RealtimeDBURL = "https://other"
	clone.Backtest.InitialCapital = 1

	assert.Equal(t, "ccxt", cfg.Data.DataSources[0])
	assert.Equal(t, "https://rt", *cfg.Database.RealtimeDBURL)
	assert.Equal(t, 100000.0, cfg.Backtest.InitialCapital)

	var nilCfg *Config
	assert.Nil(t, nilCfg.Clone())
}
