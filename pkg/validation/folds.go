package validation

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/pkg/types"
)

// FoldWindow sizes walk-forward folds in calendar days
type FoldWindow struct {
	TrainDays int
	TestDays  int
	RollDays  int
}

func (w FoldWindow) String() string {
	return fmt.Sprintf("%d,%d,%d", w.TrainDays, w.TestDays, w.RollDays)
}

// ParseFoldWindow reads "train,test,roll" day counts. All three must be
// positive.
func ParseFoldWindow(value string) (FoldWindow, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return FoldWindow{}, apperrors.NewValidationError("validation", "parse folds",
			fmt.Sprintf("folds %q must be train,test,roll days", value))
	}

	days := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n <= 0 {
			return FoldWindow{}, apperrors.NewValidationError("validation", "parse folds",
				fmt.Sprintf("fold size %q must be a positive number of days", part))
		}
		days[i] = n
	}
	return FoldWindow{TrainDays: days[0], TestDays: days[1], RollDays: days[2]}, nil
}

// Folds cuts data into rolling walk-forward folds of this window
func (w FoldWindow) Folds(data []types.OHLCV) []WalkForwardFold {
	return CreateRollingFolds(data, w.TrainDays, w.TestDays, w.RollDays)
}
