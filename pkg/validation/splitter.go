package validation

import (
	"math"
	"time"

	"github.com/ducminhle1904/agts/internal/config"
	"github.com/ducminhle1904/agts/pkg/types"
)

// Minimum fold sizes for walk-forward validation
const (
	minFoldBars      = 100
	minFoldTrainBars = 50
	minFoldTestBars  = 10
)

// DefaultDataSplitter implements the DataSplitter interface
type DefaultDataSplitter struct{}

// NewDefaultDataSplitter creates a new default data splitter
func NewDefaultDataSplitter() *DefaultDataSplitter {
	return &DefaultDataSplitter{}
}

// SplitTrainValidationTest partitions data chronologically: the first
// floor(n*trainRatio) bars train, the next floor(n*validationRatio) validate
// and the remainder tests. Ratios outside [0,1], or summing above 1, put
// everything in Train.
func (s *DefaultDataSplitter) SplitTrainValidationTest(data []types.OHLCV, trainRatio, validationRatio float64) Split {
	if !validRatio(trainRatio) || !validRatio(validationRatio) || trainRatio+validationRatio > 1 {
		return Split{Train: data}
	}

	n := float64(len(data))
	trainEnd := int(math.Floor(n * trainRatio))
	validationEnd := trainEnd + int(math.Floor(n*validationRatio))
	if validationEnd > len(data) {
		validationEnd = len(data)
	}

	return Split{
		Train:      data[:trainEnd],
		Validation: data[trainEnd:validationEnd],
		Test:       data[validationEnd:],
	}
}

func validRatio(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= 1
}

// CreateRollingFolds creates rolling walk-forward folds
func (s *DefaultDataSplitter) CreateRollingFolds(data []types.OHLCV, trainDays, testDays, rollDays int) []WalkForwardFold {
	var folds []WalkForwardFold

	trainDur := time.Duration(trainDays) * 24 * time.Hour
	testDur := time.Duration(testDays) * 24 * time.Hour
	rollDur := time.Duration(rollDays) * 24 * time.Hour

	if len(data) < minFoldBars || trainDur <= 0 || testDur <= 0 {
		return folds
	}

	start := 0
	for {
		trainEndTs := data[start].Timestamp.Add(trainDur)
		trainEnd := start
		for trainEnd < len(data) && data[trainEnd].Timestamp.Before(trainEndTs) {
			trainEnd++
		}

		testEndTs := trainEndTs.Add(testDur)
		testEnd := trainEnd
		for testEnd < len(data) && data[testEnd].Timestamp.Before(testEndTs) {
			testEnd++
		}

		trainSize := trainEnd - start
		testSize := testEnd - trainEnd
		if trainSize < minFoldTrainBars || testSize < minFoldTestBars {
			break
		}

		folds = append(folds, WalkForwardFold{
			Train:      data[start:trainEnd],
			Test:       data[trainEnd:testEnd],
			TrainStart: data[start].Timestamp,
			TrainEnd:   data[trainEnd-1].Timestamp,
			TestStart:  data[trainEnd].Timestamp,
			TestEnd:    data[testEnd-1].Timestamp,
		})

		nextStartTs := data[start].Timestamp.Add(rollDur)
		nextStart := start
		for nextStart < len(data) && data[nextStart].Timestamp.Before(nextStartTs) {
			nextStart++
		}
		if nextStart <= start {
			nextStart = start + 1
		}
		if nextStart >= len(data) {
			break
		}
		start = nextStart
	}

	return folds
}

// SplitTrainValidationTest is a convenience function that uses the default splitter
func SplitTrainValidationTest(data []types.OHLCV, trainRatio, validationRatio float64) Split {
	return NewDefaultDataSplitter().SplitTrainValidationTest(data, trainRatio, validationRatio)
}

// SplitWithConfig splits data using the configured train and validation ratios
func SplitWithConfig(data []types.OHLCV, cfg config.DataConfig) Split {
	return SplitTrainValidationTest(data, cfg.TrainTestSplit, cfg.ValidationSplit)
}

// CreateRollingFolds is a convenience function that uses the default splitter
func CreateRollingFolds(data []types.OHLCV, trainDays, testDays, rollDays int) []WalkForwardFold {
	return NewDefaultDataSplitter().CreateRollingFolds(data, trainDays, testDays, rollDays)
}
