package data

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	bybit_api "github.com/bybit-exchange/bybit.go.api"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
	"github.com/ducminhle1904/agts/pkg/types"
)

// Supported exchange backends for the exchange-API source
const (
	ExchangeBybit   = "bybit"
	ExchangeBinance = "binance"
)

// ExchangeOptions selects and configures the exchange backend
type ExchangeOptions struct {
	Exchange  string // bybit (default) or binance
	APIKey    string
	APISecret string
	Testnet   bool
	Category  string // bybit market category, "spot" by default
	BaseURL   string // overrides the backend endpoint when set
}

// klineBackend fetches one page of bars ending at end, ascending.
type klineBackend interface {
	exchange() string
	pageLimit() int
	fetchPage(ctx context.Context, symbol string, tf Timeframe, end time.Time, limit int) ([]types.OHLCV, error)
}

// ExchangeSource serves crypto pairs from an exchange API. Requests larger
// than one page are paged backwards from End.
type ExchangeSource struct {
	name    string
	backend klineBackend
	now     func() time.Time
}

// NewExchangeSource creates the exchange-API source for opts.Exchange
func NewExchangeSource(name string, opts ExchangeOptions) (*ExchangeSource, error) {
	var backend klineBackend
	switch strings.ToLower(strings.TrimSpace(opts.Exchange)) {
	case "", ExchangeBybit:
		backend = newBybitBackend(opts)
	case ExchangeBinance:
		backend = newBinanceBackend(opts)
	default:
		return nil, apperrors.NewConfigurationError(name, "create source",
			fmt.Sprintf("exchange %q is not supported, supported exchanges: %s, %s", opts.Exchange, ExchangeBybit, ExchangeBinance))
	}

	return &ExchangeSource{name: name, backend: backend, now: time.Now}, nil
}

// Name returns the source identifier
func (s *ExchangeSource) Name() string {
	return s.name
}

// Exchange returns the backend exchange name
func (s *ExchangeSource) Exchange() string {
	return s.backend.exchange()
}

// Fetch returns up to req.Limit bars ending at req.End, oldest first
func (s *ExchangeSource) Fetch(ctx context.Context, req FetchRequest) ([]types.OHLCV, error) {
	tf, err := ParseTimeframe(req.Timeframe)
	if err != nil {
		return nil, err
	}

	symbol := ExchangeSymbol(req.Symbol)
	limit := req.limitOr(defaultLimit)
	end := req.endOr(s.now())

	var bars []types.OHLCV
	for len(bars) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := min(limit-len(bars), s.backend.pageLimit())
		chunk, err := s.backend.fetchPage(ctx, symbol, tf, end, page)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}

		chunk = dropBefore(chunk, req.Start)
		bars = append(chunk, bars...)
		if len(chunk) < page {
			break
		}
		end = chunk[0].Timestamp.Add(-time.Millisecond)
	}

	bars = RemoveDuplicates(SortByTimestamp(bars))
	return TrimToLast(bars, limit), nil
}

// dropBefore drops bars older than start from an ascending chunk
func dropBefore(chunk []types.OHLCV, start time.Time) []types.OHLCV {
	if start.IsZero() {
		return chunk
	}
	idx := slices.IndexFunc(chunk, func(c types.OHLCV) bool { return !c.Timestamp.Before(start) })
	if idx < 0 {
		return nil
	}
	return chunk[idx:]
}

// ExchangeSymbol converts "BTC/USDT" style pairs to "BTCUSDT"
func ExchangeSymbol(symbol string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(symbol), "/", ""))
}

// bybitBackend wraps the Bybit v5 market kline endpoint
type bybitBackend struct {
	httpClient *bybit_api.Client
	category   string
}

func newBybitBackend(opts ExchangeOptions) *bybitBackend {
	baseURL := bybit_api.MAINNET
	if opts.Testnet {
		baseURL = bybit_api.TESTNET
	}
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}

	category := opts.Category
	if category == "" {
		category = "spot"
	}

	return &bybitBackend{
		httpClient: bybit_api.NewBybitHttpClient(opts.APIKey, opts.APISecret, bybit_api.WithBaseURL(baseURL)),
		category:   category,
	}
}

func (b *bybitBackend) exchange() string { return ExchangeBybit }

func (b *bybitBackend) pageLimit() int { return 1000 }

func (b *bybitBackend) fetchPage(ctx context.Context, symbol string, tf Timeframe, end time.Time, limit int) ([]types.OHLCV, error) {
	interval, err := bybitInterval(tf)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"category": b.category,
		"symbol":   symbol,
		"interval": interval,
		"limit":    limit,
		"end":      end.UnixMilli(),
	}

	result, err := b.httpClient.NewUtaBybitServiceWithParams(params).GetMarketKline(ctx)
	if err != nil {
		return nil, apperrors.CategorizeError(fmt.Errorf("failed to get klines: %w", err), "bybit", "get klines")
	}

	return parseBybitKlines(result)
}

// parseBybitKlines converts a kline ServerResponse into ascending bars.
// Bybit lists klines newest first as
// [startTime, open, high, low, close, volume, turnover].
func parseBybitKlines(serverResp *bybit_api.ServerResponse) ([]types.OHLCV, error) {
	if serverResp == nil {
		return nil, apperrors.NewExchangeError("bybit", "parse klines", fmt.Errorf("empty response"))
	}
	if serverResp.RetCode != 0 {
		return nil, apperrors.NewExchangeError("bybit", "parse klines",
			fmt.Errorf("API error: %s (code: %d)", serverResp.RetMsg, serverResp.RetCode))
	}

	resultBytes, err := json.Marshal(serverResp.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	var klineResult struct {
		Symbol   string     `json:"symbol"`
		Category string     `json:"category"`
		List     [][]string `json:"list"`
	}
	if err := json.Unmarshal(resultBytes, &klineResult); err != nil {
		return nil, fmt.Errorf("failed to unmarshal kline result: %w", err)
	}

	bars := make([]types.OHLCV, 0, len(klineResult.List))
	for _, item := range klineResult.List {
		if len(item) < 6 {
			continue
		}
		ms, err := strconv.ParseInt(item[0], 10, 64)
		if err != nil {
			continue
		}
		bars = append(bars, types.OHLCV{
			Timestamp: time.UnixMilli(ms).UTC(),
			Open:      parseFloat64(item[1]),
			High:      parseFloat64(item[2]),
			Low:       parseFloat64(item[3]),
			Close:     parseFloat64(item[4]),
			Volume:    parseFloat64(item[5]),
		})
	}

	slices.Reverse(bars)
	return bars, nil
}

// binanceBackend wraps the Binance spot klines endpoint
type binanceBackend struct {
	client *binance.Client
}

func newBinanceBackend(opts ExchangeOptions) *binanceBackend {
	client := binance.NewClient(opts.APIKey, opts.APISecret)
	if opts.Testnet {
		client.BaseURL = "https://testnet.binance.vision"
	}
	if opts.BaseURL != "" {
		client.BaseURL = opts.BaseURL
	}
	return &binanceBackend{client: client}
}

func (b *binanceBackend) exchange() string { return ExchangeBinance }

func (b *binanceBackend) pageLimit() int { return 1000 }

func (b *binanceBackend) fetchPage(ctx context.Context, symbol string, tf Timeframe, end time.Time, limit int) ([]types.OHLCV, error) {
	interval, err := binanceInterval(tf)
	if err != nil {
		return nil, err
	}

	klines, err := b.client.NewKlinesService().
		Symbol(symbol).
		Interval(interval).
		EndTime(end.UnixMilli()).
		Limit(limit).
		Do(ctx)
	if err != nil {
		return nil, apperrors.CategorizeError(fmt.Errorf("failed to get klines: %w", err), "binance", "get klines")
	}

	return convertBinanceKlines(klines), nil
}

func convertBinanceKlines(klines []*binance.Kline) []types.OHLCV {
	bars := make([]types.OHLCV, 0, len(klines))
	for _, k := range klines {
		if k == nil {
			continue
		}
		bars = append(bars, types.OHLCV{
			Timestamp: time.UnixMilli(k.OpenTime).UTC(),
			Open:      parseFloat64(k.Open),
			High:      parseFloat64(k.High),
			Low:       parseFloat64(k.Low),
			Close:     parseFloat64(k.Close),
			Volume:    parseFloat64(k.Volume),
		})
	}
	return bars
}

func parseFloat64(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
