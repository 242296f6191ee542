package models

import "time"

// Candle is a single OHLCV bar. Timestamp is unix seconds.
type Candle struct {
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Time returns the bar timestamp as time.Time.
func (c Candle) Time() time.Time { return time.Unix(c.Timestamp, 0) }

// CandleUpdate is the pipeline trigger payload: either a single bar or a
// historical series for a pair. Account fields, when present, override the
// account-state provider for this run.
type CandleUpdate struct {
	Pair      string
	Timeframe string
	Timestamp int64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Candles   []Candle

	OpenTrades      *int
	DailyPnL        *float64
	CurrentExposure *float64
}

// HasSeries reports whether a historical series was supplied.
func (u *CandleUpdate) HasSeries() bool { return len(u.Candles) > 0 }

// HasBar reports whether the update carries usable single-bar OHLC data.
func (u *CandleUpdate) HasBar() bool {
	return u.Open > 0 && u.High > 0 && u.Low > 0 && u.Close > 0
}

// Bar returns the single-bar form of the update as a Candle.
func (u *CandleUpdate) Bar() Candle {
	return Candle{
		Timestamp: u.Timestamp,
		Open:      u.Open,
		High:      u.High,
		Low:       u.Low,
		Close:     u.Close,
		Volume:    u.Volume,
	}
}
