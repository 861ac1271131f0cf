package data

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/pkg/types"
)

// DefaultYahooBaseURL is the Yahoo Finance chart API host
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// equitySessionPadding widens a calendar window so that a request for N
// bars still covers N trading-session bars on markets that close overnight
// and on weekends.
const equitySessionPadding = 5

// YahooOptions configures the quote-service source
type YahooOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// YahooSource fetches bars from the Yahoo Finance v8 chart endpoint
type YahooSource struct {
	name    string
	baseURL string
	client  *http.Client
	now     func() time.Time
}

// NewYahooSource creates a Yahoo Finance source
func NewYahooSource(name string, opts YahooOptions) *YahooSource {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &YahooSource{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		now:     time.Now,
	}
}

// Name returns the source identifier
func (s *YahooSource) Name() string {
	return s.name
}

// Fetch downloads the chart for req and returns the newest req.Limit bars
func (s *YahooSource) Fetch(ctx context.Context, req FetchRequest) ([]types.OHLCV, error) {
	tf, err := ParseTimeframe(req.Timeframe)
	if err != nil {
		return nil, err
	}
	interval, err := yahooInterval(tf)
	if err != nil {
		return nil, err
	}

	limit := req.limitOr(defaultLimit)
	end := req.endOr(s.now())
	start := req.Start
	if start.IsZero() {
		start = end.Add(-time.Duration(limit*equitySessionPadding) * tf.Duration())
	}
	if maxRange := yahooMaxRange(interval); maxRange > 0 && end.Sub(start) > maxRange {
		start = end.Add(-maxRange)
	}

	query := url.Values{}
	query.Set("interval", interval)
	query.Set("period1", strconv.FormatInt(start.Unix(), 10))
	query.Set("period2", strconv.FormatInt(end.Unix(), 10))
	query.Set("includePrePost", "false")

	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?%s", s.baseURL, url.PathEscape(YahooSymbol(req.Symbol)), query.Encode())

	body, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	bars, err := parseYahooChart(req.Symbol, body)
	if err != nil {
		return nil, err
	}
	return TrimToLast(bars, limit), nil
}

func (s *YahooSource) get(ctx context.Context, endpoint string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	// Yahoo rejects requests without a browser-like user agent
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (compatible; agts/1.0)")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.CategorizeError(err, s.name, "get chart")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewNetworkError(s.name, "read chart", err)
	}

	// Yahoo reports unknown symbols as 404 with a JSON error body
	if resp.StatusCode == http.StatusNotFound && json.Valid(body) {
		return body, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewHTTPStatusError(s.name, "get chart", resp.StatusCode, string(body))
	}
	return body, nil
}

// YahooSymbol converts pair notation to Yahoo tickers ("BTC/USD" -> "BTC-USD")
func YahooSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", "-"))
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency        string `json:"currency"`
				Symbol          string `json:"symbol"`
				ExchangeName    string `json:"exchangeName"`
				DataGranularity string `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"` // null for missing bars
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func parseYahooChart(symbol string, data []byte) ([]types.OHLCV, error) {
	var resp yahooChartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, apperrors.NewExchangeError("yfinance", "parse chart", fmt.Errorf("json unmarshal failed: %w", err))
	}

	if resp.Chart.Error != nil {
		msg := fmt.Sprintf("yahoo api error for %s: %s - %s", symbol, resp.Chart.Error.Code, resp.Chart.Error.Description)
		if strings.EqualFold(resp.Chart.Error.Code, "Not Found") {
			return nil, apperrors.NewNotFoundError("yfinance", "parse chart", msg)
		}
		return nil, apperrors.NewExchangeError("yfinance", "parse chart", fmt.Errorf("%s", msg))
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, apperrors.NewNotFoundError("yfinance", "parse chart", fmt.Sprintf("no quote data in response for %s", symbol))
	}

	result := resp.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	n := len(result.Timestamp)
	if len(quote.Open) != n || len(quote.High) != n || len(quote.Low) != n ||
		len(quote.Close) != n || len(quote.Volume) != n {
		return nil, apperrors.NewValidationError("yfinance", "parse chart", fmt.Sprintf("data alignment error for %s", symbol))
	}

	bars := make([]types.OHLCV, 0, n)
	for i, ts := range result.Timestamp {
		// Bars with any missing price are holidays or halts
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil || quote.Close[i] == nil {
			continue
		}
		volume := 0.0
		if quote.Volume[i] != nil {
			volume = *quote.Volume[i]
		}
		bars = append(bars, types.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      *quote.Open[i],
			High:      *quote.High[i],
			Low:       *quote.Low[i],
			Close:     *quote.Close[i],
			Volume:    volume,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return RemoveDuplicates(bars), nil
}
