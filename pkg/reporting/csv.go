package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ducminhle1904/agts/pkg/data"
	"github.com/ducminhle1904/agts/pkg/types"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteSeriesCSV writes bars in the layout the CSV source reads back.
// A path ending in .xlsx is delegated to the Excel writer.
func (r *DefaultCSVReporter) WriteSeriesCSV(series *types.Series, path string) error {
	if series == nil {
		return fmt.Errorf("no series to write")
	}
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteSeriesXLSX([]*types.Series{series}, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}

	dateFormat := data.DefaultCSVFormat.DateFormat
	for _, bar := range series.Bars {
		if err := w.Write([]string{
			bar.Timestamp.UTC().Format(dateFormat),
			formatFloat(bar.Open),
			formatFloat(bar.High),
			formatFloat(bar.Low),
			formatFloat(bar.Close),
			formatFloat(bar.Volume),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSeriesCSV is a convenience function that uses the default CSV reporter
func WriteSeriesCSV(series *types.Series, path string) error {
	return NewDefaultCSVReporter().WriteSeriesCSV(series, path)
}
