package models

// CandleBar is one OHLCV bar on the wire.
type CandleBar struct {
	Timestamp int64   `json:"timestamp" validate:"required"`
	Open      float64 `json:"open" validate:"required"`
	High      float64 `json:"high" validate:"required"`
	Low       float64 `json:"low" validate:"required"`
	Close     float64 `json:"close" validate:"required"`
	Volume    float64 `json:"volume"`
}

// CandleWebhookRequest triggers the pipeline with a single closed bar
// or a full historical series.
type CandleWebhookRequest struct {
	Pair      string  `json:"pair" validate:"required"`
	Timeframe string  `json:"timeframe" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`

	Candles []CandleBar `json:"candles" validate:"omitempty,dive"`

	// Optional account overrides for the risk checks.
	OpenTrades      *int     `json:"open_trades"`
	DailyPnL        *float64 `json:"daily_pnl"`
	CurrentExposure *float64 `json:"current_exposure"`
}

// ToUpdate converts the webhook body into the pipeline trigger.
func (r *CandleWebhookRequest) ToUpdate() *CandleUpdate {
	u := &CandleUpdate{
		Pair:            r.Pair,
		Timeframe:       r.Timeframe,
		Timestamp:       r.Timestamp,
		Open:            r.Open,
		High:            r.High,
		Low:             r.Low,
		Close:           r.Close,
		Volume:          r.Volume,
		OpenTrades:      r.OpenTrades,
		DailyPnL:        r.DailyPnL,
		CurrentExposure: r.CurrentExposure,
	}
	for _, bar := range r.Candles {
		u.Candles = append(u.Candles, Candle{
			Timestamp: bar.Timestamp,
			Open:      bar.Open,
			High:      bar.High,
			Low:       bar.Low,
			Close:     bar.Close,
			Volume:    bar.Volume,
		})
	}
	return u
}

// WebhookAccepted acknowledges an enqueued pipeline run.
type WebhookAccepted struct {
	TaskID string `json:"task_id"`
	Pair   string `json:"pair"`
	Status string `json:"status"`
}

// PositionStatusRequest addresses one pair's open position.
type PositionStatusRequest struct {
	Pair string `param:"pair" validate:"required"`
}

// PositionStatusResponse is the monitoring snapshot for a pair.
type PositionStatusResponse struct {
	Pair       string             `json:"pair"`
	TakeProfit *TakeProfitSetup   `json:"take_profit,omitempty"`
	Trailing   *TrailingStopState `json:"trailing_stop,omitempty"`
	Remaining  RemainingPosition  `json:"remaining"`
}
