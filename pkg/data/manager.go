package data

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/ducminhle1904/agts/internal/config"
	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/internal/logger"
	"github.com/ducminhle1904/agts/internal/monitoring"
	"github.com/ducminhle1904/agts/pkg/types"
)

// DataManager routes symbols to the configured sources and returns
// validated lookback windows
type DataManager struct {
	cfg      config.DataConfig
	sources  []Source
	log      *logger.Logger
	observer FetchObserver
	now      func() time.Time
}

// FetchObserver is told about every fetch attempt the manager makes
type FetchObserver interface {
	ObserveFetch(source, symbol string, bars int, err error)
}

// NewDataManager instantiates one source per cfg.DataSources entry, in order.
// Repeated identifiers are created once.
func NewDataManager(cfg config.DataConfig, factory *SourceFactory) (*DataManager, error) {
	if factory == nil {
		factory = NewSourceFactory(SourceOptions{})
	}
	if len(cfg.DataSources) == 0 {
		return nil, apperrors.NewConfigurationError("data", "create manager", "no data sources configured")
	}

	ids := lo.Uniq(lo.Map(cfg.DataSources, func(id string, _ int) string {
		return strings.ToLower(strings.TrimSpace(id))
	}))

	sources := make([]Source, 0, len(ids))
	for _, id := range ids {
		source, err := factory.Create(id)
		if err != nil {
			return nil, err
		}
		sources = append(sources, source)
	}

	return &DataManager{
		cfg:     cfg,
		sources: sources,
		log:     logger.NewNop(),
		now:     time.Now,
	}, nil
}

// SetLogger replaces the manager's logger
func (dm *DataManager) SetLogger(l *logger.Logger) {
	if l != nil {
		dm.log = l
	}
}

// SetObserver registers o to be notified of every fetch attempt
func (dm *DataManager) SetObserver(o FetchObserver) {
	dm.observer = o
}

// Sources returns the instantiated sources in configuration order
func (dm *DataManager) Sources() []Source {
	return append([]Source(nil), dm.sources...)
}

// IsCryptoPair reports whether symbol is written in pair notation ("BTC/USDT")
func IsCryptoPair(symbol string) bool {
	return strings.Contains(symbol, "/")
}

// SourceFor picks the source for symbol. Crypto pairs go to the exchange
// source; everything else goes to the first configured non-exchange source.
func (dm *DataManager) SourceFor(symbol string) (Source, error) {
	if IsCryptoPair(symbol) {
		if source, ok := lo.Find(dm.sources, func(s Source) bool { return s.Name() == config.SourceExchange }); ok {
			return source, nil
		}
		return nil, apperrors.NewConfigurationError("data", "route symbol",
			fmt.Sprintf("crypto pair %s needs the %s source, which is not configured", symbol, config.SourceExchange))
	}

	if source, ok := lo.Find(dm.sources, func(s Source) bool { return s.Name() != config.SourceExchange }); ok {
		return source, nil
	}
	return nil, apperrors.NewConfigurationError("data", "route symbol",
		fmt.Sprintf("equity symbol %s needs one of %s, %s or %s, none is configured",
			symbol, config.SourceYahoo, config.SourceAlpaca, config.SourceCSV))
}

// Fetch returns the validated lookback window of symbol at the default timeframe
func (dm *DataManager) Fetch(ctx context.Context, symbol string) (*types.Series, error) {
	source, err := dm.SourceFor(symbol)
	if err != nil {
		monitoring.RecordError(string(apperrors.CategoryOf(err)))
		return nil, err
	}

	req := FetchRequest{
		Symbol:    symbol,
		Timeframe: dm.cfg.DefaultTimeframe,
		Limit:     dm.cfg.LookbackPeriods,
	}

	dm.log.Debug("Fetching %d %s bars of %s from %s", req.Limit, req.Timeframe, symbol, source.Name())
	started := dm.now()
	bars, err := source.Fetch(ctx, req)
	if err == nil {
		err = ValidateData(bars)
	}
	monitoring.RecordFetch(source.Name(), len(bars), dm.now().Sub(started), err)
	if dm.observer != nil {
		dm.observer.ObserveFetch(source.Name(), symbol, len(bars), err)
	}
	if err != nil {
		monitoring.RecordError(string(apperrors.CategoryOf(err)))
		dm.log.Error("Fetch of %s from %s failed: %v", symbol, source.Name(), err)
		return nil, err
	}

	bars = TrimToLast(bars, dm.cfg.LookbackPeriods)
	series := &types.Series{
		Symbol:    symbol,
		Source:    source.Name(),
		Timeframe: dm.cfg.DefaultTimeframe,
		Bars:      bars,
	}
	first, _ := series.First()
	last, _ := series.Last()
	dm.log.Info("Fetched %d bars of %s from %s (%s to %s)", series.Len(), symbol, source.Name(),
		first.Timestamp.Format(time.RFC3339), last.Timestamp.Format(time.RFC3339))
	return series, nil
}

// FetchAll fetches every configured symbol in order. Failures do not stop
// the loop; they are returned joined alongside the successful series.
func (dm *DataManager) FetchAll(ctx context.Context) ([]*types.Series, error) {
	return dm.FetchSymbols(ctx, dm.cfg.Symbols)
}

// FetchSymbols is FetchAll over an explicit symbol list
func (dm *DataManager) FetchSymbols(ctx context.Context, symbols []string) ([]*types.Series, error) {
	var (
		series []*types.Series
		errs   []error
	)
	for _, symbol := range symbols {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		s, err := dm.Fetch(ctx, symbol)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", symbol, err))
			continue
		}
		series = append(series, s)
	}

	if len(errs) > 0 {
		dm.log.Warning("%d of %d symbols failed", len(errs), len(symbols))
	}
	return series, errors.Join(errs...)
}
