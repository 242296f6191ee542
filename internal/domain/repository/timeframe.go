package repository

import "fmt"

// Timeframe is a candle aggregation interval.
type Timeframe string

const (
	TF1m  Timeframe = "1m"
	TF5m  Timeframe = "5m"
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

var timeframeSeconds = map[Timeframe]int64{
	TF1m:  60,
	TF5m:  300,
	TF15m: 900,
	TF1h:  3600,
	TF4h:  14400,
	TF1d:  86400,
}

// Seconds returns the interval length, 0 for unknown timeframes.
func (t Timeframe) Seconds() int64 { return timeframeSeconds[t] }

// ParseTimeframe validates a raw timeframe string.
func ParseTimeframe(s string) (Timeframe, error) {
	tf := Timeframe(s)
	if _, ok := timeframeSeconds[tf]; !ok {
		return "", fmt.Errorf("unknown timeframe %q", s)
	}
	return tf, nil
}
