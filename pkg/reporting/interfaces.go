// Package reporting renders configuration snapshots and fetched series as
// console tables, CSV files and Excel workbooks.
package reporting

import (
	"github.com/ducminhle1904/agts/internal/config"
	"github.com/ducminhle1904/agts/pkg/types"
	"github.com/ducminhle1904/agts/pkg/validation"
)

// ConsoleReporter defines interface for console output
type ConsoleReporter interface {
	PrintConfig(cfg *config.Config)
	PrintSeriesSummary(series []*types.Series, splits map[string]validation.Split)
	PrintFoldSummary(series []*types.Series, folds map[string][]validation.WalkForwardFold, window validation.FoldWindow)
}

// FileReporter defines interface for file output
type FileReporter interface {
	WriteSeriesCSV(series *types.Series, path string) error
	WriteSeriesXLSX(series []*types.Series, path string) error
	WriteConfigJSON(cfg *config.Config, path string) error
}

// PathManager defines interface for output path management
type PathManager interface {
	SeriesExportPath(root string, series *types.Series) string
	EnsureDirectoryExists(path string) error
}
