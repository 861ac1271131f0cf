package data

import (
	"fmt"
	"strings"

	"github.com/ducminhle1904/agts/internal/config"
	apperrors "github.com/ducminhle1904/agts/internal/errors"
)

// SourceOptions carries the per-source settings the factory hands to each
// variant. Credentials are supplied by the caller.
type SourceOptions struct {
	Exchange ExchangeOptions
	Yahoo    YahooOptions
	Alpaca   AlpacaOptions
	CSV      CSVOptions
}

// SourceFactory builds Source implementations by identifier
type SourceFactory struct {
	opts SourceOptions
}

// NewSourceFactory creates a factory using opts for every source it builds
func NewSourceFactory(opts SourceOptions) *SourceFactory {
	return &SourceFactory{opts: opts}
}

// SupportedSources lists the identifiers Create accepts
func (f *SourceFactory) SupportedSources() []string {
	return []string{config.SourceExchange, config.SourceYahoo, config.SourceAlpaca, config.SourceCSV}
}

// Create instantiates the source registered under id
func (f *SourceFactory) Create(id string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case config.SourceExchange:
		source, err := NewExchangeSource(config.SourceExchange, f.opts.Exchange)
		if err != nil {
			return nil, err
		}
		return source, nil
	case config.SourceYahoo:
		return NewYahooSource(config.SourceYahoo, f.opts.Yahoo), nil
	case config.SourceAlpaca:
		return NewAlpacaSource(config.SourceAlpaca, f.opts.Alpaca), nil
	case config.SourceCSV:
		return NewCSVSource(config.SourceCSV, f.opts.CSV), nil
	default:
		return nil, apperrors.NewConfigurationError("data", "create source",
			fmt.Sprintf("unknown data source %q, supported sources: %s", id, strings.Join(f.SupportedSources(), ", ")))
	}
}
