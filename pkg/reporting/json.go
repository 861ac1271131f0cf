package reporting

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ducminhle1904/agts/internal/config"
)

// DefaultJSONFormatter implements JSON output functionality
type DefaultJSONFormatter struct{}

// NewDefaultJSONFormatter creates a new JSON formatter
func NewDefaultJSONFormatter() *DefaultJSONFormatter {
	return &DefaultJSONFormatter{}
}

// FormatConfig formats a snapshot as indented JSON
func (f *DefaultJSONFormatter) FormatConfig(cfg *config.Config) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration to format")
	}
	return json.MarshalIndent(cfg, "", "  ")
}

// PrintConfig prints a snapshot as JSON to out
func (f *DefaultJSONFormatter) PrintConfig(out io.Writer, cfg *config.Config) error {
	data, err := f.FormatConfig(cfg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// WriteConfigJSON writes a snapshot to a JSON file
func (f *DefaultJSONFormatter) WriteConfigJSON(cfg *config.Config, path string) error {
	data, err := f.FormatConfig(cfg)
	if err != nil {
		return err
	}

	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// WriteConfigJSON is a convenience function that uses the default formatter
func WriteConfigJSON(cfg *config.Config, path string) error {
	return NewDefaultJSONFormatter().WriteConfigJSON(cfg, path)
}
