package reporting

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ducminhle1904/agts/pkg/data"
	"github.com/ducminhle1904/agts/pkg/types"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// SeriesExportPath returns where a series is exported under root, laid out
// so that the CSV source can read it back
func (p *DefaultPathManager) SeriesExportPath(root string, series *types.Series) string {
	source := strings.ToLower(strings.TrimSpace(series.Source))
	if source == "" {
		source = "unknown"
	}
	return data.DataFilePath(root, source, series.Symbol, series.Timeframe)
}

// EnsureDirectoryExists creates the parent directory of path if needed
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// SeriesExportPath is a convenience function that uses the default path manager
func SeriesExportPath(root string, series *types.Series) string {
	return NewDefaultPathManager().SeriesExportPath(root, series)
}
