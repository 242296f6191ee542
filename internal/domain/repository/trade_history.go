package repository

import (
	"context"

	"TradeFlow/internal/domain/models"
)

// TradeHistory persists closed-trade outcomes and serves them back for
// the Kelly history estimate.
type TradeHistory interface {
	Record(ctx context.Context, outcome *models.TradeOutcome) error
	Recent(ctx context.Context, pair string, limit int) ([]models.TradeOutcome, error)
	Health(ctx context.Context) error
	Close() error
}
