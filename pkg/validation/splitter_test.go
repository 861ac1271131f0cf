package validation

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/agts/internal/config"
	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/pkg/types"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func makeBars(n int) []types.OHLCV {
	bars := make([]types.OHLCV, n)
	for i := range bars {
		bars[i] = types.OHLCV{
			Timestamp: epoch.Add(time.Duration(i) * time.Hour),
			Open:      100,
			High:      101,
			Low:       99,
			Close:     100,
			Volume:    1,
		}
	}
	return bars
}

func TestSplitTrainValidationTest(t *testing.T) {
	data := makeBars(100)

	split := SplitTrainValidationTest(data, 0.8, 0.1)
	train, validation, test := split.Sizes()
	assert.Equal(t, 80, train)
	assert.Equal(t, 10, validation)
	assert.Equal(t, 10, test)

	assert.Equal(t, data[79], split.Train[79])
	assert.Equal(t, data[80], split.Validation[0])
	assert.Equal(t, data[90], split.Test[0])
}

func TestSplitTrainValidationTest_FloorsPartSizes(t *testing.T) {
	split := SplitTrainValidationTest(makeBars(7), 0.5, 0.3)

	train, validation, test := split.Sizes()
	assert.Equal(t, 3, train)
	assert.Equal(t, 2, validation)
	assert.Equal(t, 2, test)
}

func TestSplitTrainValidationTest_InvalidRatios(t *testing.T) {
	data := makeBars(20)

	for _, ratios := range [][2]float64{{0.9, 0.2}, {-0.1, 0.1}, {0.5, 1.1}, {math.NaN(), 0.1}} {
		split := SplitTrainValidationTest(data, ratios[0], ratios[1])
		assert.Equal(t, data, split.Train, "%v", ratios)
		assert.Empty(t, split.Validation)
		assert.Empty(t, split.Test)
	}
}

func TestSplitTrainValidationTest_Empty(t *testing.T) {
	split := SplitTrainValidationTest(nil, 0.8, 0.1)
	train, validation, test := split.Sizes()
	assert.Zero(t, train+validation+test)
}

func TestSplitWithConfig(t *testing.T) {
	cfg := config.Default().Data
	split := SplitWithConfig(makeBars(50), cfg)

	train, validation, test := split.Sizes()
	assert.Equal(t, 40, train)
	assert.Equal(t, 5, validation)
	assert.Equal(t, 5, test)
}

func TestCreateRollingFolds(t *testing.T) {
	data := makeBars(40 * 24)

	folds := CreateRollingFolds(data, 10, 5, 5)
	require.Len(t, folds, 6)

	first := folds[0]
	assert.Len(t, first.Train, 240)
	assert.Len(t, first.Test, 120)
	assert.Equal(t, epoch, first.TrainStart)
	assert.Equal(t, epoch.Add(240*time.Hour), first.TestStart)

	assert.Equal(t, epoch.Add(120*time.Hour), folds[1].TrainStart)
	assert.Equal(t, data[len(data)-1].Timestamp, folds[5].TestEnd)
}

func TestCreateRollingFolds_TooLittleData(t *testing.T) {
	assert.Empty(t, CreateRollingFolds(makeBars(50), 1, 1, 1))
	assert.Empty(t, CreateRollingFolds(makeBars(500), 0, 5, 5))
}

func TestParseFoldWindow(t *testing.T) {
	w, err := ParseFoldWindow("30, 7,7")
	require.NoError(t, err)
	assert.Equal(t, FoldWindow{TrainDays: 30, TestDays: 7, RollDays: 7}, w)
	assert.Equal(t, "30,7,7", w.String())

	for _, bad := range []string{"", "30,7", "30,7,7,7", "30,x,7", "30,0,7", "-1,7,7"} {
		_, err := ParseFoldWindow(bad)
		require.Error(t, err, bad)
		assert.Equal(t, apperrors.ErrorCategoryValidation, apperrors.CategoryOf(err), bad)
	}
}

func TestFoldWindow_Folds(t *testing.T) {
	data := makeBars(40 * 24)
	w := FoldWindow{TrainDays: 10, TestDays: 5, RollDays: 5}
	assert.Equal(t, CreateRollingFolds(data, 10, 5, 5), w.Folds(data))
	assert.Len(t, w.Folds(data), 6)
}
