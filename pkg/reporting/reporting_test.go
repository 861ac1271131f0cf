package reporting

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/agts/internal/config"
	"github.com/ducminhle1904/agts/pkg/data"
	"github.com/ducminhle1904/agts/pkg/types"
	"github.com/ducminhle1904/agts/pkg/validation"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func testSeries(symbol, source string, n int) *types.Series {
	bars := make([]types.OHLCV, n)
	for i := range bars {
		price := 100 + float64(i)
		bars[i] = types.OHLCV{
			Timestamp: epoch.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 1.5,
			Low:       price - 0.5,
			Close:     price + 1,
			Volume:    1000.25,
		}
	}
	return &types.Series{Symbol: symbol, Source: source, Timeframe: "1h", Bars: bars}
}

func TestSummarize(t *testing.T) {
	s := testSeries("BTC/USDT", "ccxt", 10)
	summary := Summarize(s, validation.SplitTrainValidationTest(s.Bars, 0.8, 0.1))

	assert.Equal(t, 10, summary.Bars)
	assert.Equal(t, epoch, summary.Start)
	assert.Equal(t, epoch.Add(9*time.Hour), summary.End)
	assert.Equal(t, 101.0, summary.FirstClose)
	assert.Equal(t, 110.0, summary.LastClose)
	assert.InDelta(t, 8.9109, summary.ChangePct, 1e-3)
	assert.InDelta(t, 10002.5, summary.TotalVolume, 1e-9)
	assert.Equal(t, [3]int{8, 1, 1}, [3]int{summary.Train, summary.Validation, summary.Test})

	empty := Summarize(&types.Series{Symbol: "AAPL"}, validation.Split{})
	assert.Equal(t, 0, empty.Bars)
	assert.True(t, empty.Start.IsZero())
}

func TestConsoleReporter_PrintConfig(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Default()
	url := "https://agts.example.firebaseio.com"
	cfg.Database.RealtimeDBURL = &url

	NewConsoleReporter(&buf).PrintConfig(cfg)
	out := buf.String()

	assert.Contains(t, out, "AGTS CONFIGURATION")
	assert.Contains(t, out, "agts_strategies")
	assert.Contains(t, out, url)
	assert.Contains(t, out, "BTC/USDT, ETH/USDT, AAPL, MSFT")
	assert.Contains(t, out, "ccxt, yfinance, alpaca")
	assert.Contains(t, out, "$100,000")
	assert.Contains(t, out, "5,000")
	assert.Contains(t, out, "10MB x 5")
}

func TestConsoleReporter_PrintSeriesSummary(t *testing.T) {
	var buf bytes.Buffer
	series := []*types.Series{testSeries("BTC/USDT", "ccxt", 1200), testSeries("AAPL", "yfinance", 3), nil}
	splits := map[string]validation.Split{
		"AAPL": validation.SplitTrainValidationTest(series[1].Bars, 0.8, 0.1),
	}

	NewConsoleReporter(&buf).PrintSeriesSummary(series, splits)
	out := buf.String()

	assert.Contains(t, out, "MARKET DATA")
	assert.Contains(t, out, "BTC/USDT")
	assert.Contains(t, out, "yfinance")
	assert.Contains(t, out, "1,200")
	assert.Contains(t, out, "1,203")
	assert.Contains(t, out, "2/0/1")
	assert.Contains(t, out, "2024-01-01 00:00")
}

func TestConsoleReporter_PrintFoldSummary(t *testing.T) {
	var buf bytes.Buffer
	window := validation.FoldWindow{TrainDays: 10, TestDays: 5, RollDays: 5}
	series := []*types.Series{testSeries("BTC/USDT", "ccxt", 40*24), testSeries("AAPL", "yfinance", 3), nil}
	folds := map[string][]validation.WalkForwardFold{
		"BTC/USDT": window.Folds(series[0].Bars),
		"AAPL":     window.Folds(series[1].Bars),
	}
	require.Len(t, folds["BTC/USDT"], 6)

	NewConsoleReporter(&buf).PrintFoldSummary(series, folds, window)
	out := buf.String()

	assert.Contains(t, out, "WALK-FORWARD FOLDS (10d train / 5d test / 5d roll)")
	assert.Contains(t, out, "BTC/USDT")
	assert.Contains(t, out, "2024-01-01 00:00 → 2024-01-10 23:00")
	assert.Contains(t, out, "2024-02-09 23:00")
	assert.Contains(t, out, "240")
	assert.Contains(t, out, "AAPL")
}

func TestWriteSeriesCSV_ReadableByCSVSource(t *testing.T) {
	root := t.TempDir()
	series := testSeries("ETH/USDT", "ccxt", 24)

	path := SeriesExportPath(root, series)
	assert.Equal(t, filepath.Join(root, "ccxt", "ETHUSDT", "60", "candles.csv"), path)
	require.NoError(t, WriteSeriesCSV(series, path))

	source := data.NewCSVSource("csv", data.CSVOptions{DataRoot: root})
	bars, err := source.Fetch(context.Background(), data.FetchRequest{Symbol: "ETH/USDT", Timeframe: "1h", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, series.Bars, bars)
}

func TestWriteSeriesCSV_Layout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "series.csv")
	require.NoError(t, WriteSeriesCSV(testSeries("AAPL", "yfinance", 2), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "timestamp,open,high,low,close,volume", lines[0])
	assert.Equal(t, "2024-01-01 00:00:00,100,101.5,99.5,101,1000.25", lines[1])

	assert.Error(t, WriteSeriesCSV(nil, path))
}

func TestWriteSeriesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export", "series.xlsx")
	series := []*types.Series{
		testSeries("BTC/USDT", "ccxt", 5),
		testSeries("AAPL", "yfinance", 3),
		testSeries("BTC/USDT", "csv", 2),
	}
	require.NoError(t, WriteSeriesXLSX(series, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()

	assert.Equal(t, []string{SummarySheet, "BTC-USDT 1h", "AAPL 1h", "BTC-USDT 1h (2)"}, fx.GetSheetList())

	raw := excelize.Options{RawCellValue: true}
	sheet, err := fx.GetCellValue(SummarySheet, "A2", raw)
	require.NoError(t, err)
	assert.Equal(t, "BTC-USDT 1h", sheet)
	bars, err := fx.GetCellValue(SummarySheet, "E3", raw)
	require.NoError(t, err)
	assert.Equal(t, "3", bars)

	rows, err := fx.GetRows("AAPL 1h", raw)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Timestamp", "Open", "High", "Low", "Close", "Volume"}, rows[0])
	assert.Equal(t, "2024-01-01 02:00:00", rows[3][0])
	assert.Equal(t, "103", rows[3][4])
}

func TestWriteSeriesCSV_DelegatesXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "single.xlsx")
	require.NoError(t, WriteSeriesCSV(testSeries("MSFT", "alpaca", 2), path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()
	assert.Equal(t, []string{SummarySheet, "MSFT 1h"}, fx.GetSheetList())
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "BTC-USDT 1h", SheetName(&types.Series{Symbol: "BTC/USDT", Timeframe: "1h"}))
	assert.Equal(t, "Series", SheetName(&types.Series{}))

	long := SheetName(&types.Series{Symbol: strings.Repeat("X", 40), Timeframe: "1h"})
	assert.Len(t, long, maxSheetNameLen)

	used := map[string]bool{}
	assert.Equal(t, "summary (2)", uniqueSheetName("summary", used))
	assert.Equal(t, "AAPL 1h", uniqueSheetName("AAPL 1h", used))
	assert.Equal(t, "AAPL 1h (2)", uniqueSheetName("AAPL 1h", used))
}

func TestSheetName_MultiByteSymbols(t *testing.T) {
	name := SheetName(&types.Series{Symbol: strings.Repeat("比特币", 12), Timeframe: "1h"})
	assert.True(t, utf8.ValidString(name))
	assert.Equal(t, maxSheetNameLen, utf8.RuneCountInString(name))

	used := map[string]bool{}
	first := uniqueSheetName(name, used)
	second := uniqueSheetName(name, used)
	assert.Equal(t, name, first)
	assert.True(t, utf8.ValidString(second))
	assert.Equal(t, maxSheetNameLen, utf8.RuneCountInString(second))
	assert.True(t, strings.HasSuffix(second, " (2)"))

	path := filepath.Join(t.TempDir(), "wide.xlsx")
	series := testSeries(strings.Repeat("比特币", 12), "ccxt", 3)
	require.NoError(t, WriteSeriesXLSX([]*types.Series{series, series}, path))

	fx, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer fx.Close()
	assert.Equal(t, []string{SummarySheet, first, second}, fx.GetSheetList())
}

func TestWriteConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.json")
	cfg := config.Default()
	require.NoError(t, WriteConfigJSON(cfg, path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded config.Config
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, *cfg, decoded)

	var buf bytes.Buffer
	require.NoError(t, NewDefaultJSONFormatter().PrintConfig(&buf, cfg))
	assert.Contains(t, buf.String(), `"lookback_periods": 5000`)
}
