package types

import "time"

type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// Series is an ordered run of bars for one symbol from one source.
type Series struct {
	Symbol    string
	Source    string
	Timeframe string
	Bars      []OHLCV
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Bars)
}

// First returns the oldest bar
func (s *Series) First() (OHLCV, bool) {
	if s.Len() == 0 {
		return OHLCV{}, false
	}
	return s.Bars[0], true
}

// Last returns the newest bar
func (s *Series) Last() (OHLCV, bool) {
	if s.Len() == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// Closes extracts the close prices in order
func (s *Series) Closes() []float64 {
	closes := make([]float64, s.Len())
	for i := range closes {
		closes[i] = s.Bars[i].Close
	}
	return closes
}
