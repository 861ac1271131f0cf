package reporting

import (
	"io"
	"os"
	"time"

	"github.com/ducminhle1904/agts/internal/config"
	"github.com/ducminhle1904/agts/pkg/types"
	"github.com/ducminhle1904/agts/pkg/validation"
)

// SeriesSummary condenses one series for tables and the workbook summary sheet
type SeriesSummary struct {
	Symbol      string
	Source      string
	Timeframe   string
	Bars        int
	Start       time.Time
	End         time.Time
	FirstClose  float64
	LastClose   float64
	ChangePct   float64
	TotalVolume float64
	Train       int
	Validation  int
	Test        int
}

// Summarize computes the summary of s. split may be the zero Split.
func Summarize(s *types.Series, split validation.Split) SeriesSummary {
	summary := SeriesSummary{Bars: s.Len()}
	if s == nil {
		return summary
	}
	summary.Symbol = s.Symbol
	summary.Source = s.Source
	summary.Timeframe = s.Timeframe
	summary.Train, summary.Validation, summary.Test = split.Sizes()

	first, ok := s.First()
	if !ok {
		return summary
	}
	last, _ := s.Last()
	summary.Start = first.Timestamp
	summary.End = last.Timestamp
	summary.FirstClose = first.Close
	summary.LastClose = last.Close
	if first.Close != 0 {
		summary.ChangePct = (last.Close - first.Close) / first.Close * 100
	}
	for _, bar := range s.Bars {
		summary.TotalVolume += bar.Volume
	}
	return summary
}

// DefaultReporter implements the complete Reporter interface
type DefaultReporter struct {
	console *DefaultConsoleReporter
	csv     *DefaultCSVReporter
	excel   *DefaultExcelReporter
	json    *DefaultJSONFormatter
	paths   *DefaultPathManager
}

// NewDefaultReporter creates a reporter printing to stdout
func NewDefaultReporter() *DefaultReporter {
	return NewReporter(os.Stdout)
}

// NewReporter creates a reporter printing console tables to out
func NewReporter(out io.Writer) *DefaultReporter {
	return &DefaultReporter{
		console: NewConsoleReporter(out),
		csv:     NewDefaultCSVReporter(),
		excel:   NewDefaultExcelReporter(),
		json:    NewDefaultJSONFormatter(),
		paths:   NewDefaultPathManager(),
	}
}

// Console output methods
func (r *DefaultReporter) PrintConfig(cfg *config.Config) {
	r.console.PrintConfig(cfg)
}

func (r *DefaultReporter) PrintSeriesSummary(series []*types.Series, splits map[string]validation.Split) {
	r.console.PrintSeriesSummary(series, splits)
}

func (r *DefaultReporter) PrintFoldSummary(series []*types.Series, folds map[string][]validation.WalkForwardFold, window validation.FoldWindow) {
	r.console.PrintFoldSummary(series, folds, window)
}

// File output methods
func (r *DefaultReporter) WriteSeriesCSV(series *types.Series, path string) error {
	return r.csv.WriteSeriesCSV(series, path)
}

func (r *DefaultReporter) WriteSeriesXLSX(series []*types.Series, path string) error {
	return r.excel.WriteSeriesXLSX(series, path)
}

func (r *DefaultReporter) WriteConfigJSON(cfg *config.Config, path string) error {
	return r.json.WriteConfigJSON(cfg, path)
}

// Path methods
func (r *DefaultReporter) SeriesExportPath(root string, series *types.Series) string {
	return r.paths.SeriesExportPath(root, series)
}

func (r *DefaultReporter) EnsureDirectoryExists(path string) error {
	return r.paths.EnsureDirectoryExists(path)
}
