package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ducminhle1904/agts/internal/config"
	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/internal/logger"
	"github.com/ducminhle1904/agts/pkg/types"
)

// CSVOptions configures the offline file source
type CSVOptions struct {
	DataRoot string
	// SearchSources are the source folders tried under DataRoot, in order.
	SearchSources []string
	Format        *CSVColumnMapping
	Logger        *logger.Logger
}

// DefaultCSVSearchSources are tried when CSVOptions.SearchSources is empty
func DefaultCSVSearchSources() []string {
	return []string{config.SourceExchange, config.SourceYahoo, config.SourceAlpaca, ExchangeBybit, ExchangeBinance}
}

// CSVSource serves bars from candles.csv files under a data root
type CSVSource struct {
	name     string
	dataRoot string
	sources  []string
	format   CSVColumnMapping
	locator  *DefaultFileLocator
	log      *logger.Logger
}

// NewCSVSource creates a CSV file source
func NewCSVSource(name string, opts CSVOptions) *CSVSource {
	dataRoot := opts.DataRoot
	if dataRoot == "" {
		dataRoot = "data"
	}
	sources := opts.SearchSources
	if len(sources) == 0 {
		sources = DefaultCSVSearchSources()
	}
	format := DefaultCSVFormat
	if opts.Format != nil {
		format = *opts.Format
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &CSVSource{
		name:     name,
		dataRoot: dataRoot,
		sources:  sources,
		format:   format,
		locator:  NewDefaultFileLocator(),
		log:      log,
	}
}

// Name returns the source identifier
func (s *CSVSource) Name() string {
	return s.name
}

// Fetch locates the series file and returns the newest req.Limit bars within
// the requested window
func (s *CSVSource) Fetch(ctx context.Context, req FetchRequest) ([]types.OHLCV, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := ParseTimeframe(req.Timeframe); err != nil {
		return nil, err
	}

	path := s.find(req.Symbol, req.Timeframe)
	if path == "" {
		return nil, apperrors.NewNotFoundError(s.name, "fetch",
			fmt.Sprintf("no data file for %s %s under %s", req.Symbol, req.Timeframe, s.dataRoot))
	}

	bars, err := s.LoadFile(path)
	if err != nil {
		return nil, err
	}

	bars = RemoveDuplicates(SortByTimestamp(bars))
	bars = NewDefaultDataFilter().FilterByDateRange(bars, req.Start, req.End)
	return TrimToLast(bars, req.limitOr(defaultLimit)), nil
}

func (s *CSVSource) find(symbol, interval string) string {
	for _, source := range s.sources {
		if path := s.locator.FindDataFile(s.dataRoot, source, symbol, interval); path != "" {
			return path
		}
	}
	return s.locator.FindDataFile(s.dataRoot, "", symbol, interval)
}

// LoadFile reads one CSV file. The first row is a header; rows that fail to
// parse or break price bounds are skipped with a warning.
func (s *CSVSource) LoadFile(path string) ([]types.OHLCV, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError(s.name, "load file", fmt.Sprintf("data file %s does not exist", path))
		}
		return nil, apperrors.WrapError(err, apperrors.ErrorCategoryFatal, s.name, "load file").WithContext("path", path)
	}
	defer file.Close()

	return s.parse(file, path)
}

func (s *CSVSource) parse(r io.Reader, path string) ([]types.OHLCV, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading CSV header of %s: %w", path, err)
	}

	format := s.format
	required := format.RequiredColumns()
	var data []types.OHLCV
	lineNum := 1
	skipped := 0
	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading CSV at line %d: %w", lineNum+1, err)
		}
		lineNum++

		if len(record) < required {
			s.log.Warning("Insufficient columns at line %d of %s (expected %d, got %d), skipping", lineNum, path, required, len(record))
			skipped++
			continue
		}

		candle, err := parseCSVRecord(record, format)
		if err != nil {
			s.log.Warning("Line %d of %s skipped: %v", lineNum, path, err)
			skipped++
			continue
		}
		data = append(data, candle)
	}

	if skipped > 0 {
		s.log.Info("Loaded %d bars from %s (%d rows skipped)", len(data), path, skipped)
	}
	return data, nil
}

func parseCSVRecord(record []string, format CSVColumnMapping) (types.OHLCV, error) {
	timestamp, err := time.Parse(format.DateFormat, strings.TrimSpace(record[format.TimestampCol]))
	if err != nil {
		return types.OHLCV{}, fmt.Errorf("invalid timestamp %q", record[format.TimestampCol])
	}

	fields := []struct {
		name string
		col  int
	}{
		{"open", format.OpenCol},
		{"high", format.HighCol},
		{"low", format.LowCol},
		{"close", format.CloseCol},
		{"volume", format.VolumeCol},
	}
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[f.col]), 64)
		if err != nil {
			return types.OHLCV{}, fmt.Errorf("invalid %s %q", f.name, record[f.col])
		}
		values[i] = v
	}

	candle := types.OHLCV{
		Timestamp: timestamp.UTC(),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
	}

	if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
		return types.OHLCV{}, fmt.Errorf("prices must be positive")
	}
	if candle.High < candle.Open || candle.High < candle.Close || candle.High < candle.Low {
		return types.OHLCV{}, fmt.Errorf("high price is lower than other prices")
	}
	if candle.Low > candle.Open || candle.Low > candle.Close {
		return types.OHLCV{}, fmt.Errorf("low price is higher than other prices")
	}
	return candle, nil
}
