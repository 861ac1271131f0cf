package data

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/agts/internal/config"
	apperrors "github.com/ducminhle1904/agts/internal/errors"
)

const yahooChartBody = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL", "exchangeName": "NMS", "dataGranularity": "60m"},
      "timestamp": [1704074400, 1704067200, 1704070800, 1704078000],
      "indicators": {"quote": [{
        "open":   [102, 100, 101, null],
        "high":   [104, 102, 103, null],
        "low":    [101, 99, 100, null],
        "close":  [103, 101, 102, null],
        "volume": [300, 100, null, null]
      }]}
    }],
    "error": null
  }
}`

func TestYahooSource_Fetch(t *testing.T) {
	var gotPath, gotInterval, gotAgent string
	var gotPeriod1, gotPeriod2 int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotAgent = r.Header.Get("User-Agent")
		gotPeriod1, _ = strconv.ParseInt(r.URL.Query().Get("period1"), 10, 64)
		gotPeriod2, _ = strconv.ParseInt(r.URL.Query().Get("period2"), 10, 64)
		fmt.Fprint(w, yahooChartBody)
	}))
	defer server.Close()

	now := testEpoch.Add(4 * time.Hour)
	source := NewYahooSource("yfinance", YahooOptions{BaseURL: server.URL})
	source.now = func() time.Time { return now }

	bars, err := source.Fetch(context.Background(), FetchRequest{Symbol: "aapl", Timeframe: "1h", Limit: 2})
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "60m", gotInterval)
	assert.NotEmpty(t, gotAgent)
	assert.Equal(t, now.Unix(), gotPeriod2)
	assert.Equal(t, now.Add(-2*equitySessionPadding*time.Hour).Unix(), gotPeriod1)

	require.Len(t, bars, 2)
	assert.Equal(t, testEpoch.Add(time.Hour), bars[0].Timestamp)
	assert.Equal(t, 0.0, bars[0].Volume, "null volume maps to zero")
	assert.Equal(t, testEpoch.Add(2*time.Hour), bars[1].Timestamp)
	assert.Equal(t, 103.0, bars[1].Close)
}

func TestYahooSymbol(t *testing.T) {
	assert.Equal(t, "BTC-USD", YahooSymbol("btc/usd"))
	assert.Equal(t, "MSFT", YahooSymbol("MSFT"))
}

func TestParseYahooChart_Errors(t *testing.T) {
	_, err := parseYahooChart("NOPE", []byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryNotFound, apperrors.CategoryOf(err))

	_, err = parseYahooChart("AAPL", []byte(`{"chart":{"result":[],"error":null}}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryNotFound, apperrors.CategoryOf(err))

	_, err = parseYahooChart("AAPL", []byte(`{"chart":{"result":[{"timestamp":[1,2],"indicators":{"quote":[{"open":[1],"high":[1],"low":[1],"close":[1],"volume":[1]}]}}]}}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryValidation, apperrors.CategoryOf(err))

	_, err = parseYahooChart("AAPL", []byte(`not json`))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryExchange, apperrors.CategoryOf(err))
}

func TestYahooSource_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
	}))
	defer server.Close()

	source := NewYahooSource("yfinance", YahooOptions{BaseURL: server.URL})
	_, err := source.Fetch(context.Background(), FetchRequest{Symbol: "AAPL", Timeframe: "1d"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryRateLimit, apperrors.CategoryOf(err))
}

func TestYahooSource_UnsupportedTimeframe(t *testing.T) {
	source := NewYahooSource("yfinance", YahooOptions{BaseURL: "http://127.0.0.1:0"})
	_, err := source.Fetch(context.Background(), FetchRequest{Symbol: "AAPL", Timeframe: "4h"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryValidation, apperrors.CategoryOf(err))
}

func TestYahooSource_ClampsWindowToIntervalRange(t *testing.T) {
	cfg := config.Default().Data
	day := int64(24 * time.Hour / time.Second)

	tests := []struct {
		timeframe string
		limit     int
		maxDays   int64
	}{
		{cfg.DefaultTimeframe, cfg.LookbackPeriods, 730},
		{"90m", cfg.LookbackPeriods, 730},
		{"15m", cfg.LookbackPeriods, 60},
		{"1m", cfg.LookbackPeriods, 7},
	}

	for _, tt := range tests {
		t.Run(tt.timeframe, func(t *testing.T) {
			var period1, period2 int64
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				period1, _ = strconv.ParseInt(r.URL.Query().Get("period1"), 10, 64)
				period2, _ = strconv.ParseInt(r.URL.Query().Get("period2"), 10, 64)
				fmt.Fprint(w, yahooChartBody)
			}))
			defer server.Close()

			source := NewYahooSource("yfinance", YahooOptions{BaseURL: server.URL})
			source.now = func() time.Time { return testEpoch }

			_, err := source.Fetch(context.Background(), FetchRequest{Symbol: "AAPL", Timeframe: tt.timeframe, Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, testEpoch.Unix(), period2)
			assert.Positive(t, period2-period1)
			assert.LessOrEqual(t, period2-period1, tt.maxDays*day)
		})
	}
}

func TestYahooSource_DailyWindowIsNotClamped(t *testing.T) {
	var period1 int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		period1, _ = strconv.ParseInt(r.URL.Query().Get("period1"), 10, 64)
		fmt.Fprint(w, yahooChartBody)
	}))
	defer server.Close()

	source := NewYahooSource("yfinance", YahooOptions{BaseURL: server.URL})
	source.now = func() time.Time { return testEpoch }

	_, err := source.Fetch(context.Background(), FetchRequest{Symbol: "AAPL", Timeframe: "1d", Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, testEpoch.Add(-1000*equitySessionPadding*24*time.Hour).Unix(), period1)
}

func TestYahooSource_NotFoundWithoutJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, "<html><body>Not Found</body></html>")
	}))
	defer server.Close()

	source := NewYahooSource("yfinance", YahooOptions{BaseURL: server.URL})
	_, err := source.Fetch(context.Background(), FetchRequest{Symbol: "AAPL", Timeframe: "1d"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorCategoryNotFound, apperrors.CategoryOf(err))
}
