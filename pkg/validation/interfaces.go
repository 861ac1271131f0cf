// Package validation splits bar series into training and evaluation sets
package validation

import (
	"time"

	"github.com/ducminhle1904/agts/pkg/types"
)

// DataSplitter defines the interface for splitting data into train/test sets
type DataSplitter interface {
	SplitTrainValidationTest(data []types.OHLCV, trainRatio, validationRatio float64) Split
	CreateRollingFolds(data []types.OHLCV, trainDays, testDays, rollDays int) []WalkForwardFold
}

// Split is a chronological train/validation/test partition. The three
// parts are consecutive sub-slices of the input.
type Split struct {
	Train      []types.OHLCV
	Validation []types.OHLCV
	Test       []types.OHLCV
}

// Sizes returns the bar count of each part
func (s Split) Sizes() (train, validation, test int) {
	return len(s.Train), len(s.Validation), len(s.Test)
}

// WalkForwardFold represents a single fold in walk-forward validation
type WalkForwardFold struct {
	Train      []types.OHLCV
	Test       []types.OHLCV
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}
