package position

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/domain/service"
	"TradeFlow/pkg/logger"
)

// OrderExecutor sends orders to the gateway with optional dry-run
// validation and bounded retries.
type OrderExecutor struct {
	gateway      service.ExecutionGateway
	log          *logger.Logger
	enableDryRun bool
	maxRetries   int
	backoff      func(attempt int) time.Duration
}

// ExecutorOption configures an OrderExecutor.
type ExecutorOption func(*OrderExecutor)

// WithDryRun toggles pre-trade dry-run validation.
func WithDryRun(enabled bool) ExecutorOption {
	return func(e *OrderExecutor) { e.enableDryRun = enabled }
}

// WithMaxRetries bounds the create-order attempts.
func WithMaxRetries(n int) ExecutorOption {
	return func(e *OrderExecutor) {
		if n > 0 {
			e.maxRetries = n
		}
	}
}

// WithBackoff replaces the retry backoff schedule.
func WithBackoff(fn func(attempt int) time.Duration) ExecutorOption {
	return func(e *OrderExecutor) {
		if fn != nil {
			e.backoff = fn
		}
	}
}

// NewOrderExecutor creates an executor with dry-run on, three attempts
// and exponential backoff.
func NewOrderExecutor(gateway service.ExecutionGateway, log *logger.Logger, opts ...ExecutorOption) *OrderExecutor {
	e := &OrderExecutor{
		gateway:      gateway,
		log:          log,
		enableDryRun: true,
		maxRetries:   3,
		backoff: func(attempt int) time.Duration {
			return time.Duration(1<<attempt) * 500 * time.Millisecond
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute validates and places an order. A dry-run rejection or an
// exhausted retry budget yields a non-success result, not an error;
// errors are reserved for context cancellation.
func (e *OrderExecutor) Execute(ctx context.Context, req *models.OrderRequest) (*models.ExecutionResult, error) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Agent == "" {
		req.Agent = "position_manager"
	}
	if req.Type == "" {
		req.Type = models.OrderMarket
	}

	res := &models.ExecutionResult{
		RequestID:  req.RequestID,
		Pair:       req.Pair,
		Side:       req.Side,
		Amount:     req.Amount,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Timestamp:  time.Now().UTC(),
	}

	if e.enableDryRun {
		dryRun, err := e.gateway.DryRunOrder(ctx, req)
		if err != nil {
			dryRun = &models.DryRunResult{
				Valid:  false,
				Errors: []string{fmt.Sprintf("dry-run request failed: %v", err)},
			}
		}
		res.DryRun = dryRun
		if !dryRun.Valid {
			res.Status = models.ExecRejected
			res.Reason = "dry-run validation failed"
			e.log.Warn("order rejected by dry-run",
				logger.String("pair", req.Pair),
				logger.String("request_id", req.RequestID),
				logger.Strings("errors", dryRun.Errors))
			return res, nil
		}
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		res.Attempts = attempt

		ack, err := e.gateway.CreateOrder(ctx, req)
		if err == nil {
			res.Success = true
			res.Status = models.ExecExecuted
			res.OrderID = ack.OrderID
			res.FilledAmount = ack.FilledAmount
			res.AveragePrice = ack.AveragePrice
			e.log.Info("order executed",
				logger.String("pair", req.Pair),
				logger.String("order_id", ack.OrderID),
				logger.Int("attempt", attempt))
			return res, nil
		}
		lastErr = err

		if attempt < e.maxRetries {
			e.log.Warn("order attempt failed, retrying",
				logger.String("pair", req.Pair),
				logger.Int("attempt", attempt),
				logger.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.backoff(attempt)):
			}
		}
	}

	res.Status = models.ExecFailed
	res.Reason = fmt.Sprintf("order execution failed after %d attempts: %v", e.maxRetries, lastErr)
	e.log.Error("order execution failed",
		logger.String("pair", req.Pair),
		logger.String("request_id", req.RequestID),
		logger.Int("attempts", e.maxRetries),
		logger.Error(lastErr))
	return res, nil
}

// ExecuteMarket places a market order.
func (e *OrderExecutor) ExecuteMarket(ctx context.Context, pair string, side models.Action, amount, stopLoss, takeProfit float64) (*models.ExecutionResult, error) {
	return e.Execute(ctx, &models.OrderRequest{
		Pair:       pair,
		Side:       side,
		Amount:     amount,
		Type:       models.OrderMarket,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	})
}

// ExecuteLimit places a limit order at the given price.
func (e *OrderExecutor) ExecuteLimit(ctx context.Context, pair string, side models.Action, amount, price, stopLoss, takeProfit float64) (*models.ExecutionResult, error) {
	return e.Execute(ctx, &models.OrderRequest{
		Pair:       pair,
		Side:       side,
		Amount:     amount,
		Type:       models.OrderLimit,
		Price:      price,
		StopLoss:   stopLoss,
		TakeProfit: takeProfit,
	})
}
