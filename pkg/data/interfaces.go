package data

import (
	"context"
	"time"

	"github.com/ducminhle1904/agts/pkg/types"
)

// FetchRequest describes one historical bar request.
type FetchRequest struct {
	Symbol    string
	Timeframe string
	Start     time.Time // zero means unbounded
	End       time.Time // zero means now
	Limit     int       // zero means the source default
}

// Source is implemented once per market data provider
type Source interface {
	// Name returns the source identifier, e.g. "ccxt" or "yfinance"
	Name() string

	// Fetch returns bars in ascending time order
	Fetch(ctx context.Context, req FetchRequest) ([]types.OHLCV, error)
}

// DataFilter interface for filtering and transforming data
type DataFilter interface {
	// FilterByPeriod filters data to the last N period
	FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV

	// FilterByDateRange filters data to a specific date range
	FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV

	// ValidateTimeSequence ensures data is in chronological order
	ValidateTimeSequence(data []types.OHLCV) error
}

// CSVColumnMapping defines the column positions for a CSV layout
type CSVColumnMapping struct {
	TimestampCol int
	OpenCol      int
	HighCol      int
	LowCol       int
	CloseCol     int
	VolumeCol    int
	MinColumns   int
	DateFormat   string
}

// RequiredColumns is the shortest row the mapping can read, never less than
// one past its highest configured column.
func (m CSVColumnMapping) RequiredColumns() int {
	highest := max(m.TimestampCol, m.OpenCol, m.HighCol, m.LowCol, m.CloseCol, m.VolumeCol)
	return max(m.MinColumns, highest+1)
}

// DefaultCSVFormat is the layout written by the reporting package
var DefaultCSVFormat = CSVColumnMapping{
	TimestampCol: 0,
	OpenCol:      1,
	HighCol:      2,
	LowCol:       3,
	CloseCol:     4,
	VolumeCol:    5,
	MinColumns:   6,
	DateFormat:   "2006-01-02 15:04:05",
}

// FileLocator finds data files on disk
type FileLocator interface {
	// FindDataFile attempts to locate the data file for a source, symbol and interval
	FindDataFile(dataRoot, source, symbol, interval string) string
}

// defaultLimit is used when a request leaves Limit at zero
const defaultLimit = 500

func (r FetchRequest) limitOr(def int) int {
	if r.Limit > 0 {
		return r.Limit
	}
	return def
}

func (r FetchRequest) endOr(now time.Time) time.Time {
	if r.End.IsZero() {
		return now
	}
	return r.End
}
