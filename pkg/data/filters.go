package data

import (
	"fmt"
	"sort"
	"time"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByPeriod keeps the bars within period of the newest bar
func (f *DefaultDataFilter) FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoff := data[len(data)-1].Timestamp.Add(-period)
	idx := sort.Search(len(data), func(i int) bool {
		return !data[i].Timestamp.Before(cutoff)
	})
	return data[idx:]
}

// FilterByDateRange keeps bars with start <= timestamp <= end. A zero bound is open.
func (f *DefaultDataFilter) FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV {
	var filtered []types.OHLCV
	for _, candle := range data {
		if !start.IsZero() && candle.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && candle.Timestamp.After(end) {
			continue
		}
		filtered = append(filtered, candle)
	}
	return filtered
}

// ValidateTimeSequence ensures data is strictly chronological
func (f *DefaultDataFilter) ValidateTimeSequence(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp.Before(data[i-1].Timestamp) {
			return apperrors.NewValidationError("data", "validate sequence",
				fmt.Sprintf("data not in chronological order at index %d: %s comes after %s",
					i, data[i].Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339)))
		}
		if data[i].Timestamp.Equal(data[i-1].Timestamp) {
			return apperrors.NewValidationError("data", "validate sequence",
				fmt.Sprintf("duplicate timestamp at index %d: %s", i, data[i].Timestamp.Format(time.RFC3339)))
		}
	}
	return nil
}

// SortByTimestamp returns a copy sorted ascending by timestamp
func SortByTimestamp(data []types.OHLCV) []types.OHLCV {
	sorted := make([]types.OHLCV, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates drops repeated timestamps, keeping the first occurrence
func RemoveDuplicates(data []types.OHLCV) []types.OHLCV {
	if len(data) <= 1 {
		return data
	}

	filtered := make([]types.OHLCV, 0, len(data))
	seen := make(map[int64]bool, len(data))
	for _, candle := range data {
		ts := candle.Timestamp.UnixNano()
		if !seen[ts] {
			seen[ts] = true
			filtered = append(filtered, candle)
		}
	}
	return filtered
}

// TrimToLast keeps at most n of the newest bars
func TrimToLast(data []types.OHLCV, n int) []types.OHLCV {
	if n <= 0 || len(data) <= n {
		return data
	}
	return data[len(data)-n:]
}

// ValidateData checks price sanity and ordering of a bar series
func ValidateData(data []types.OHLCV) error {
	if len(data) == 0 {
		return apperrors.NewNotFoundError("data", "validate", "no data provided")
	}

	for i, candle := range data {
		if candle.Open <= 0 || candle.High <= 0 || candle.Low <= 0 || candle.Close <= 0 {
			return apperrors.NewValidationError("data", "validate",
				fmt.Sprintf("invalid price data at index %d: prices must be positive", i))
		}
		if candle.High < candle.Low {
			return apperrors.NewValidationError("data", "validate",
				fmt.Sprintf("invalid price data at index %d: high (%.4f) cannot be less than low (%.4f)", i, candle.High, candle.Low))
		}
		if candle.High < candle.Open || candle.High < candle.Close {
			return apperrors.NewValidationError("data", "validate",
				fmt.Sprintf("invalid price data at index %d: high (%.4f) must be >= open (%.4f) and close (%.4f)",
					i, candle.High, candle.Open, candle.Close))
		}
		if candle.Low > candle.Open || candle.Low > candle.Close {
			return apperrors.NewValidationError("data", "validate",
				fmt.Sprintf("invalid price data at index %d: low (%.4f) must be <= open (%.4f) and close (%.4f)",
					i, candle.Low, candle.Open, candle.Close))
		}
		if candle.Volume < 0 {
			return apperrors.NewValidationError("data", "validate",
				fmt.Sprintf("invalid volume at index %d: %.4f", i, candle.Volume))
		}
	}

	return NewDefaultDataFilter().ValidateTimeSequence(data)
}
