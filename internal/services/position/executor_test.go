package position

import (
	"context"
	"errors"
	"testing"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

// fakeGateway scripts dry-run verdicts and create-order failures.
type fakeGateway struct {
	dryValid    bool
	failFirst   int
	dryRuns     int
	created     int
	lastRequest *models.OrderRequest
}

func (g *fakeGateway) DryRunOrder(_ context.Context, req *models.OrderRequest) (*models.DryRunResult, error) {
	g.dryRuns++
	g.lastRequest = req
	if !g.dryValid {
		return &models.DryRunResult{Valid: false, Errors: []string{"insufficient balance"}}, nil
	}
	return &models.DryRunResult{Valid: true, EstimatedCost: req.Amount * 100}, nil
}

func (g *fakeGateway) CreateOrder(_ context.Context, req *models.OrderRequest) (*models.OrderAck, error) {
	g.created++
	g.lastRequest = req
	if g.created <= g.failFirst {
		return nil, errors.New("gateway unavailable")
	}
	return &models.OrderAck{
		OrderID:      "ord-1",
		Status:       "filled",
		FilledAmount: req.Amount,
		AveragePrice: 42000,
	}, nil
}

func (g *fakeGateway) PositionsSummary(context.Context) (*models.AccountState, error) {
	return &models.AccountState{Balance: 10000}, nil
}

func noBackoff(int) time.Duration { return 0 }

func TestExecuteDryRunRejection(t *testing.T) {
	gw := &fakeGateway{dryValid: false}
	e := NewOrderExecutor(gw, testLogger(t))

	res, err := e.ExecuteMarket(context.Background(), "BTC/USDT", models.ActionBuy, 0.25, 41200, 43600)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.Status != models.ExecRejected {
		t.Fatalf("status = %v, want rejected", res.Status)
	}
	if res.Success {
		t.Fatalf("rejected order must not be successful")
	}
	if gw.created != 0 {
		t.Fatalf("rejected order must not reach the gateway, got %d creates", gw.created)
	}
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	gw := &fakeGateway{dryValid: true, failFirst: 1}
	e := NewOrderExecutor(gw, testLogger(t), WithBackoff(noBackoff))

	res, err := e.ExecuteMarket(context.Background(), "BTC/USDT", models.ActionBuy, 0.25, 41200, 43600)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if !res.Success || res.Status != models.ExecExecuted {
		t.Fatalf("got success=%v status=%v", res.Success, res.Status)
	}
	if res.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", res.Attempts)
	}
	if res.OrderID != "ord-1" {
		t.Fatalf("order id = %q", res.OrderID)
	}
}

func TestExecuteExhaustsRetries(t *testing.T) {
	gw := &fakeGateway{dryValid: true, failFirst: 100}
	e := NewOrderExecutor(gw, testLogger(t), WithMaxRetries(2), WithBackoff(noBackoff))

	res, err := e.ExecuteMarket(context.Background(), "BTC/USDT", models.ActionSell, 0.25, 42800, 40400)
	if err != nil {
		t.Fatalf("exhausted retries should not surface an error, got %v", err)
	}
	if res.Status != models.ExecFailed {
		t.Fatalf("status = %v, want failed", res.Status)
	}
	if res.Attempts != 2 || gw.created != 2 {
		t.Fatalf("attempts = %d, creates = %d, want 2/2", res.Attempts, gw.created)
	}
	if res.Reason == "" {
		t.Fatalf("expected a failure reason")
	}
}

func TestExecuteContextCancelled(t *testing.T) {
	gw := &fakeGateway{dryValid: true, failFirst: 100}
	e := NewOrderExecutor(gw, testLogger(t), WithDryRun(false), WithBackoff(func(int) time.Duration { return time.Hour }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.ExecuteMarket(ctx, "BTC/USDT", models.ActionBuy, 0.25, 0, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecuteFillsRequestDefaults(t *testing.T) {
	gw := &fakeGateway{dryValid: true}
	e := NewOrderExecutor(gw, testLogger(t))

	res, err := e.Execute(context.Background(), &models.OrderRequest{
		Pair:   "ETH/USDT",
		Side:   models.ActionBuy,
		Amount: 1.5,
	})
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if res.RequestID == "" {
		t.Fatalf("request id should be generated")
	}
	if gw.lastRequest.Agent != "position_manager" {
		t.Fatalf("agent = %q", gw.lastRequest.Agent)
	}
	if gw.lastRequest.Type != models.OrderMarket {
		t.Fatalf("type = %q, want market", gw.lastRequest.Type)
	}
}
