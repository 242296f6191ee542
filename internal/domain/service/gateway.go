package service

import (
	"context"

	"TradeFlow/internal/domain/models"
)

// ExecutionGateway is the trading backend orders are sent to.
type ExecutionGateway interface {
	DryRunOrder(ctx context.Context, req *models.OrderRequest) (*models.DryRunResult, error)
	CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderAck, error)
	PositionsSummary(ctx context.Context) (*models.AccountState, error)
}

// AccountStateProvider serves the account snapshot the risk checks run on.
type AccountStateProvider interface {
	AccountState(ctx context.Context) (*models.AccountState, error)
}

// MarketStream is a live candle feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(pairs ...string) error
	Updates() <-chan *models.CandleUpdate
	Errors() <-chan error
	IsConnected() bool
	Close() error
}
