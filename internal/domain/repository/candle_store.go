package repository

import (
	"context"

	"TradeFlow/internal/domain/models"
)

// CandleStore keeps a rolling window of recent candles per pair and
// timeframe so the pipeline can run from a single-bar trigger.
type CandleStore interface {
	Append(ctx context.Context, pair string, tf Timeframe, c models.Candle) error
	Latest(ctx context.Context, pair string, tf Timeframe, limit int) ([]models.Candle, error)
}
