package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/ducminhle1904/agts/cmd/common"
	"github.com/ducminhle1904/agts/internal/config"
	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/internal/logger"
	"github.com/ducminhle1904/agts/internal/monitoring"
	"github.com/ducminhle1904/agts/pkg/data"
	"github.com/ducminhle1904/agts/pkg/reporting"
	"github.com/ducminhle1904/agts/pkg/types"
	"github.com/ducminhle1904/agts/pkg/validation"
)

const appName = "agts"

// Environment variables read by the CLI on top of the configuration registry
const (
	envBybitAPIKey     = "BYBIT_API_KEY"
	envBybitAPISecret  = "BYBIT_API_SECRET"
	envBybitTestnet    = "BYBIT_TESTNET"
	envBinanceAPIKey   = "BINANCE_API_KEY"
	envBinanceSecret   = "BINANCE_API_SECRET"
	envExchangeBaseURL = "EXCHANGE_BASE_URL"
	envYahooBaseURL    = "YAHOO_FINANCE_URL"
	envAlpacaKeyID     = "ALPACA_API_KEY_ID"
	envAlpacaSecretKey = "ALPACA_API_SECRET_KEY"
	envAlpacaFeed      = "ALPACA_DATA_FEED"
	envAlpacaDataURL   = "ALPACA_DATA_URL"
)

// Export formats accepted by -export
const (
	exportNone = "none"
	exportCSV  = "csv"
	exportXLSX = "xlsx"
	exportBoth = "both"
)

// WorkbookFileName is the Excel export written under the data root
const WorkbookFileName = "agts_market_data.xlsx"

type cliFlags struct {
	common      *common.CommonFlags
	showConfig  *bool
	fetch       *bool
	symbols     *string
	exchange    *string
	export      *string
	metricsAddr *string
	validate    *bool
	folds       *string

	foldWindow *validation.FoldWindow
}

func parseFlags(args []string, output io.Writer) (*cliFlags, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	f := &cliFlags{
		common:      common.RegisterCommonFlags(fs),
		showConfig:  fs.Bool("show-config", true, "Print the configuration snapshot"),
		fetch:       fs.Bool("fetch", false, "Fetch market data for the configured symbols"),
		symbols:     fs.String("symbols", "", "Comma separated symbols to fetch instead of the configured ones"),
		exchange:    fs.String("exchange", data.ExchangeBybit, "Exchange backing the ccxt source (bybit, binance)"),
		export:      fs.String("export", exportNone, "Export fetched data (none, csv, xlsx, both)"),
		metricsAddr: fs.String("metrics-addr", "", "Serve /metrics and /health on this address, e.g. :9090"),
		validate:    fs.Bool("validate", false, "Validate the configuration and exit non-zero on problems"),
		folds:       fs.String("folds", "", "Summarize walk-forward folds sized train,test,roll in days, e.g. 30,7,7"),
	}

	fs.Usage = common.NewUsageFormatter(appName, "AGTS configuration and market data tooling").
		AddExample("agts -show-config", "Print the effective configuration").
		AddExample("agts -fetch -symbols BTC/USDT,AAPL -export both", "Fetch two symbols and export CSV and Excel").
		AddExample("agts -fetch -exchange binance -metrics-addr :9090", "Fetch via Binance and keep serving metrics").
		AddExample("agts -fetch -symbols AAPL -folds 60,14,14", "Fetch AAPL and summarize its walk-forward folds").
		Usage(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	validator := common.NewFlagValidator().
		ValidateChoice("exchange", *f.exchange, []string{data.ExchangeBybit, data.ExchangeBinance}).
		ValidateChoice("export", *f.export, []string{exportNone, exportCSV, exportXLSX, exportBoth}).
		ValidateDirectory("data-root", *f.common.DataRoot, true)
	if *f.export != exportNone && !*f.fetch {
		validator.AddError("-export requires -fetch")
	}
	if *f.folds != "" {
		if !*f.fetch {
			validator.AddError("-folds requires -fetch")
		}
		window, err := validation.ParseFoldWindow(*f.folds)
		if err != nil {
			validator.AddError(err.Error())
		} else {
			f.foldWindow = &window
		}
	}
	if err := validator.GetError(); err != nil {
		return nil, apperrors.NewValidationError("cli", "parse flags", err.Error())
	}
	return f, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("❌ %v", err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if *f.common.Version {
		common.PrintVersion(stdout, appName)
		return nil
	}

	if err := config.LoadEnvFile(*f.common.EnvFile); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := config.Load()
	monitoring.RecordConfigLoad()

	if *f.validate {
		if err := cfg.Validate(); err != nil {
			monitoring.RecordError(string(apperrors.CategoryOf(err)))
			return fmt.Errorf("configuration is invalid: %w", err)
		}
		fmt.Fprintln(stdout, "✅ Configuration is valid")
		return nil
	}

	logCfg := cfg.Logging
	if *f.common.Verbose {
		logCfg.LogLevel = logger.LogLevelDebug.String()
	}
	appLog, err := logger.New(logCfg, logger.Options{Console: stderr, DisableFile: *f.common.ConsoleOnly})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLog.Close()
	appLog.Info("Starting %s %s", appName, common.GetFullVersion())

	reporter := reporting.NewReporter(stdout)
	if *f.showConfig {
		reporter.PrintConfig(cfg)
	}

	health := monitoring.NewHealthChecker()
	var server *http.Server
	if *f.metricsAddr != "" {
		server = startMetricsServer(*f.metricsAddr, health, appLog)
	}

	var fetchErr error
	if *f.fetch {
		fetchErr = fetchAndReport(ctx, cfg, f, health, reporter, appLog)
	}

	if server != nil {
		appLog.Info("Serving metrics on %s, press Ctrl+C to stop", *f.metricsAddr)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			appLog.LogError("metrics server shutdown", err)
		}
	}
	return fetchErr
}

func fetchAndReport(ctx context.Context, cfg *config.Config, f *cliFlags, health *monitoring.HealthChecker,
	reporter *reporting.DefaultReporter, appLog *logger.Logger) error {
	dataRoot := *f.common.DataRoot

	manager, err := data.NewDataManager(cfg.Data, data.NewSourceFactory(sourceOptions(*f.exchange, dataRoot, appLog)))
	if err != nil {
		return err
	}
	manager.SetLogger(appLog)
	manager.SetObserver(health)

	symbols := common.SplitList(*f.symbols)
	if len(symbols) == 0 {
		symbols = cfg.Data.Symbols
	}

	series, fetchErr := manager.FetchSymbols(ctx, symbols)
	if fetchErr != nil {
		appLog.Warning("Some symbols could not be fetched: %v", fetchErr)
	}

	splits := make(map[string]validation.Split, len(series))
	for _, s := range series {
		splits[s.Symbol] = validation.SplitWithConfig(s.Bars, cfg.Data)
	}
	reporter.PrintSeriesSummary(series, splits)

	if f.foldWindow != nil {
		folds := make(map[string][]validation.WalkForwardFold, len(series))
		for _, s := range series {
			folds[s.Symbol] = f.foldWindow.Folds(s.Bars)
			appLog.Debug("%s: %d walk-forward folds", s.Symbol, len(folds[s.Symbol]))
		}
		reporter.PrintFoldSummary(series, folds, *f.foldWindow)
	}

	if err := export(series, *f.export, dataRoot, appLog); err != nil {
		return errors.Join(fetchErr, err)
	}
	return fetchErr
}

func export(series []*types.Series, format, dataRoot string, appLog *logger.Logger) error {
	if len(series) == 0 || format == exportNone {
		return nil
	}

	if format == exportCSV || format == exportBoth {
		for _, s := range series {
			path := reporting.SeriesExportPath(dataRoot, s)
			if err := reporting.WriteSeriesCSV(s, path); err != nil {
				return fmt.Errorf("failed to export %s: %w", s.Symbol, err)
			}
			appLog.Info("💾 Exported %d bars of %s to %s", s.Len(), s.Symbol, path)
		}
	}

	if format == exportXLSX || format == exportBoth {
		path := filepath.Join(dataRoot, WorkbookFileName)
		if err := reporting.WriteSeriesXLSX(series, path); err != nil {
			return fmt.Errorf("failed to export workbook: %w", err)
		}
		appLog.Info("📊 Exported %d series to %s", len(series), path)
	}
	return nil
}

// sourceOptions gathers source credentials and endpoints from the environment
func sourceOptions(exchange, dataRoot string, appLog *logger.Logger) data.SourceOptions {
	exchangeOpts := data.ExchangeOptions{
		Exchange: exchange,
		BaseURL:  config.GetEnv(envExchangeBaseURL, ""),
	}
	switch exchange {
	case data.ExchangeBinance:
		exchangeOpts.APIKey = config.GetEnv(envBinanceAPIKey, "")
		exchangeOpts.APISecret = config.GetEnv(envBinanceSecret, "")
	default:
		exchangeOpts.APIKey = config.GetEnv(envBybitAPIKey, "")
		exchangeOpts.APISecret = config.GetEnv(envBybitAPISecret, "")
		exchangeOpts.Testnet, _ = strconv.ParseBool(config.GetEnv(envBybitTestnet, "false"))
	}

	return data.SourceOptions{
		Exchange: exchangeOpts,
		Yahoo: data.YahooOptions{
			BaseURL: config.GetEnv(envYahooBaseURL, ""),
		},
		Alpaca: data.AlpacaOptions{
			APIKeyID:     config.GetEnv(envAlpacaKeyID, ""),
			APISecretKey: config.GetEnv(envAlpacaSecretKey, ""),
			Feed:         config.GetEnv(envAlpacaFeed, ""),
			BaseURL:      config.GetEnv(envAlpacaDataURL, ""),
		},
		CSV: data.CSVOptions{
			DataRoot: dataRoot,
			Logger:   appLog,
		},
	}
}

func startMetricsServer(addr string, health *monitoring.HealthChecker, appLog *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", monitoring.NewMetricsHandler())
	mux.Handle("/health", health)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.LogError("metrics server", err)
		}
	}()
	return server
}
