package data

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/pkg/types"
)

// DefaultAlpacaDataURL is the Alpaca market data API host
const DefaultAlpacaDataURL = "https://data.alpaca.markets"

// AlpacaOptions configures the brokerage-API source
type AlpacaOptions struct {
	APIKeyID     string
	APISecretKey string
	Feed         string // "iex" (default) or "sip"
	BaseURL      string
	HTTPClient   *http.Client
}

// alpacaBarsClient is the part of the marketdata client the source uses
type alpacaBarsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaSource fetches US equity bars through Alpaca's market data client
type AlpacaSource struct {
	name   string
	opts   AlpacaOptions
	client alpacaBarsClient
	now    func() time.Time
}

// NewAlpacaSource creates an Alpaca source
func NewAlpacaSource(name string, opts AlpacaOptions) *AlpacaSource {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultAlpacaDataURL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Feed == "" {
		opts.Feed = "iex"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:     opts.APIKeyID,
		APISecret:  opts.APISecretKey,
		BaseURL:    opts.BaseURL,
		HTTPClient: httpClient,
	})

	return &AlpacaSource{name: name, opts: opts, client: client, now: time.Now}
}

// Name returns the source identifier
func (s *AlpacaSource) Name() string {
	return s.name
}

// Fetch requests every bar of the padded window and keeps the newest req.Limit.
// The client follows page tokens until the window is exhausted.
func (s *AlpacaSource) Fetch(ctx context.Context, req FetchRequest) ([]types.OHLCV, error) {
	if s.opts.APIKeyID == "" || s.opts.APISecretKey == "" {
		return nil, apperrors.NewCredentialsError(s.name, "fetch", "alpaca API key id and secret key are required")
	}
	if strings.Contains(req.Symbol, "/") {
		return nil, apperrors.NewValidationError(s.name, "fetch",
			fmt.Sprintf("symbol %s is a crypto pair, only equities are served", req.Symbol))
	}

	tf, err := ParseTimeframe(req.Timeframe)
	if err != nil {
		return nil, err
	}
	timeframe, err := alpacaTimeframe(tf)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := req.limitOr(defaultLimit)
	end := req.endOr(s.now())
	start := req.Start
	if start.IsZero() {
		start = end.Add(-time.Duration(limit*equitySessionPadding) * tf.Duration())
	}

	result, err := s.client.GetBars(strings.ToUpper(req.Symbol), marketdata.GetBarsRequest{
		TimeFrame:  timeframe,
		Adjustment: marketdata.Raw,
		Start:      start.UTC(),
		End:        end.UTC(),
		Feed:       marketdata.Feed(s.opts.Feed),
	})
	if err != nil {
		return nil, apperrors.CategorizeError(err, s.name, "get bars")
	}

	bars := make([]types.OHLCV, 0, len(result))
	for _, b := range result {
		bars = append(bars, types.OHLCV{
			Timestamp: b.Timestamp.UTC(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    float64(b.Volume),
		})
	}

	bars = RemoveDuplicates(SortByTimestamp(bars))
	return TrimToLast(bars, limit), nil
}
