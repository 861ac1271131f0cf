package data

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	apperrors "github.com/ducminhle1904/agts/internal/errors"
)

// Timeframe is a parsed bar size such as "15m", "1h" or "1d".
type Timeframe struct {
	Count int
	Unit  byte // 'm', 'h', 'd' or 'w'
}

// ParseTimeframe parses interval strings like "5m", "1h", "4h", "1d", "1w".
func ParseTimeframe(s string) (Timeframe, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return Timeframe{}, invalidTimeframe(s)
	}

	unit := s[len(s)-1]
	count, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || count <= 0 {
		return Timeframe{}, invalidTimeframe(s)
	}

	switch unit {
	case 'm', 'h', 'd', 'w':
		return Timeframe{Count: count, Unit: unit}, nil
	default:
		return Timeframe{}, invalidTimeframe(s)
	}
}

func invalidTimeframe(s string) error {
	return apperrors.NewValidationError("data", "parse timeframe", fmt.Sprintf("invalid timeframe %q", s))
}

func unsupportedTimeframe(source string, tf Timeframe) error {
	return apperrors.NewValidationError(source, "map timeframe", fmt.Sprintf("unsupported timeframe %s", tf))
}

// String returns the canonical form, e.g. "4h"
func (tf Timeframe) String() string {
	return fmt.Sprintf("%d%c", tf.Count, tf.Unit)
}

// Duration returns the nominal length of one bar
func (tf Timeframe) Duration() time.Duration {
	unit := time.Minute
	switch tf.Unit {
	case 'h':
		unit = time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'w':
		unit = 7 * 24 * time.Hour
	}
	return time.Duration(tf.Count) * unit
}

// Minutes returns the bar length in minutes
func (tf Timeframe) Minutes() int {
	return int(tf.Duration() / time.Minute)
}

// ConvertIntervalToMinutes converts interval strings like "5m", "1h", "4h" to
// minute numbers. Unparseable input is returned as-is.
func ConvertIntervalToMinutes(interval string) string {
	if _, err := strconv.Atoi(interval); err == nil {
		return interval
	}

	tf, err := ParseTimeframe(interval)
	if err != nil {
		return interval
	}
	return strconv.Itoa(tf.Minutes())
}

// bybitInterval maps to Bybit v5 kline intervals
func bybitInterval(tf Timeframe) (string, error) {
	switch tf.Unit {
	case 'm', 'h':
		switch m := tf.Minutes(); m {
		case 1, 3, 5, 15, 30, 60, 120, 240, 360, 720:
			return strconv.Itoa(m), nil
		}
	case 'd':
		if tf.Count == 1 {
			return "D", nil
		}
	case 'w':
		if tf.Count == 1 {
			return "W", nil
		}
	}
	return "", unsupportedTimeframe("bybit", tf)
}

// binanceInterval maps to Binance kline intervals
func binanceInterval(tf Timeframe) (string, error) {
	valid := map[string]bool{
		"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
		"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
		"1d": true, "3d": true, "1w": true,
	}
	if s := tf.String(); valid[s] {
		return s, nil
	}
	return "", unsupportedTimeframe("binance", tf)
}

// yahooInterval maps to Yahoo chart intervals
func yahooInterval(tf Timeframe) (string, error) {
	switch tf.String() {
	case "1m", "2m", "5m", "15m", "30m", "90m":
		return tf.String(), nil
	case "1h":
		return "60m", nil
	case "1d":
		return "1d", nil
	case "5d":
		return "5d", nil
	case "1w":
		return "1wk", nil
	}
	return "", unsupportedTimeframe("yfinance", tf)
}

// yahooMaxRange is how far back Yahoo serves an interval, zero when unbounded.
// Older windows are rejected outright instead of being truncated.
func yahooMaxRange(interval string) time.Duration {
	const day = 24 * time.Hour
	switch interval {
	case "1m":
		return 7 * day
	case "2m", "5m", "15m", "30m":
		return 59 * day
	case "60m", "90m":
		return 729 * day
	}
	return 0
}

// alpacaTimeframe maps to Alpaca market data timeframes
func alpacaTimeframe(tf Timeframe) (marketdata.TimeFrame, error) {
	switch tf.Unit {
	case 'm':
		if tf.Count <= 59 {
			return marketdata.NewTimeFrame(tf.Count, marketdata.Min), nil
		}
	case 'h':
		if tf.Count <= 23 {
			return marketdata.NewTimeFrame(tf.Count, marketdata.Hour), nil
		}
	case 'd':
		if tf.Count == 1 {
			return marketdata.OneDay, nil
		}
	case 'w':
		if tf.Count == 1 {
			return marketdata.NewTimeFrame(1, marketdata.Week), nil
		}
	}
	return marketdata.TimeFrame{}, unsupportedTimeframe("alpaca", tf)
}
