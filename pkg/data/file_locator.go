package data

import (
	"os"
	"path/filepath"
	"strings"
)

// dataFileName is the file holding one symbol/interval series
const dataFileName = "candles.csv"

// exchangeCategories are the market category folders of exchange dumps
var exchangeCategories = []string{"spot", "linear", "inverse", "futures"}

// DefaultFileLocator implements FileLocator for standard file system operations
type DefaultFileLocator struct{}

// NewDefaultFileLocator creates a new default file locator
func NewDefaultFileLocator() *DefaultFileLocator {
	return &DefaultFileLocator{}
}

// DataFilePath returns the path a series is exported to and read back from.
// Structure: {dataRoot}/{source}/{SYMBOL}/{minutes}/candles.csv
func DataFilePath(dataRoot, source, symbol, interval string) string {
	return filepath.Join(dataRoot, source, ExchangeSymbol(symbol), ConvertIntervalToMinutes(interval), dataFileName)
}

// CandidatePaths lists the locations searched for a series, in order.
// Besides the export layout, exchange dumps laid out as
// {dataRoot}/{exchange}/{category}/{SYMBOL}/{minutes}/candles.csv and a flat
// {dataRoot}/{SYMBOL}/{minutes}/candles.csv are accepted.
func (f *DefaultFileLocator) CandidatePaths(dataRoot, source, symbol, interval string) []string {
	symbol = ExchangeSymbol(symbol)
	minutes := ConvertIntervalToMinutes(interval)

	var paths []string
	if source != "" {
		paths = append(paths, filepath.Join(dataRoot, source, symbol, minutes, dataFileName))
		for _, category := range exchangeCategories {
			paths = append(paths, filepath.Join(dataRoot, source, category, symbol, minutes, dataFileName))
		}
	}
	return append(paths, filepath.Join(dataRoot, symbol, minutes, dataFileName))
}

// FindDataFile returns the first existing candidate path, or "" when none exists
func (f *DefaultFileLocator) FindDataFile(dataRoot, source, symbol, interval string) string {
	for _, path := range f.CandidatePaths(dataRoot, strings.ToLower(source), symbol, interval) {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}
