package gateway

import (
	"context"
	"fmt"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/service/ratelimit"
	tfhttp "TradeFlow/pkg/http"
	"TradeFlow/pkg/logger"
)

// Config holds the execution gateway connection settings.
type Config struct {
	BaseURL      string
	APIKey       string
	APISecret    string
	Timeout      time.Duration
	OrdersPerSec int
}

// Client talks to the execution gateway's REST API. Every POST body is
// signed with HMAC-SHA256 over the canonical JSON so the gateway can
// verify the request was not tampered with.
type Client struct {
	cfg     Config
	http    *tfhttp.Client
	limiter *ratelimit.Limiter
	log     *logger.Logger
}

// New creates a gateway client with a bounded per-call timeout and a
// token-bucket limit on order submissions.
func New(cfg Config, log *logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.OrdersPerSec <= 0 {
		cfg.OrdersPerSec = 5
	}
	return &Client{
		cfg:     cfg,
		http:    tfhttp.NewClient(tfhttp.WithTimeout(cfg.Timeout)),
		limiter: ratelimit.New(),
		log:     log,
	}
}

type orderPayload struct {
	Pair       string  `json:"pair"`
	Side       string  `json:"side"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	Price      float64 `json:"price,omitempty"`
	StopLoss   float64 `json:"stop_loss,omitempty"`
	TakeProfit float64 `json:"take_profit,omitempty"`
	RequestID  string  `json:"request_id"`
	Agent      string  `json:"agent"`
}

type dryRunResponse struct {
	Valid         bool     `json:"valid"`
	EstimatedCost float64  `json:"estimated_cost"`
	EstimatedFee  float64  `json:"estimated_fee"`
	Warnings      []string `json:"warnings"`
	Errors        []string `json:"errors"`
}

type orderResponse struct {
	OrderID      string  `json:"order_id"`
	Status       string  `json:"status"`
	FilledAmount float64 `json:"filled_amount"`
	AveragePrice float64 `json:"average_price"`
}

type positionsResponse struct {
	Balance         float64 `json:"balance"`
	OpenTrades      int     `json:"open_trades"`
	DailyPnL        float64 `json:"daily_pnl"`
	CurrentExposure float64 `json:"current_exposure"`
}

// DryRunOrder validates the order against the gateway without placing it.
func (c *Client) DryRunOrder(ctx context.Context, req *models.OrderRequest) (*models.DryRunResult, error) {
	var resp dryRunResponse
	if err := c.post(ctx, "/orders/dry-run", toPayload(req), &resp); err != nil {
		return nil, fmt.Errorf("dry-run order: %w", err)
	}
	return &models.DryRunResult{
		Valid:         resp.Valid,
		EstimatedCost: resp.EstimatedCost,
		EstimatedFee:  resp.EstimatedFee,
		Warnings:      resp.Warnings,
		Errors:        resp.Errors,
	}, nil
}

// CreateOrder places the order, honoring the per-pair submission rate.
func (c *Client) CreateOrder(ctx context.Context, req *models.OrderRequest) (*models.OrderAck, error) {
	if err := c.limiter.Wait(ctx, req.Pair, float64(c.cfg.OrdersPerSec), float64(c.cfg.OrdersPerSec)); err != nil {
		return nil, fmt.Errorf("order rate limit: %w", err)
	}
	var resp orderResponse
	if err := c.post(ctx, "/orders", toPayload(req), &resp); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &models.OrderAck{
		OrderID:      resp.OrderID,
		Status:       resp.Status,
		FilledAmount: resp.FilledAmount,
		AveragePrice: resp.AveragePrice,
	}, nil
}

// PositionsSummary fetches the account snapshot used by the risk checks.
func (c *Client) PositionsSummary(ctx context.Context) (*models.AccountState, error) {
	var resp positionsResponse
	err := c.http.SendAndParse(ctx, &tfhttp.RequestOptions{
		Method:  tfhttp.MethodGet,
		URL:     c.cfg.BaseURL + "/positions/summary",
		Headers: map[string]string{"X-API-Key": c.cfg.APIKey},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("positions summary: %w", err)
	}
	return &models.AccountState{
		Balance:         resp.Balance,
		OpenTrades:      resp.OpenTrades,
		DailyPnL:        resp.DailyPnL,
		CurrentExposure: resp.CurrentExposure,
	}, nil
}

// AccountState implements the account-state provider off the positions
// summary endpoint.
func (c *Client) AccountState(ctx context.Context) (*models.AccountState, error) {
	return c.PositionsSummary(ctx)
}

func (c *Client) post(ctx context.Context, path string, payload any, dest any) error {
	body, err := canonicalize(payload)
	if err != nil {
		return err
	}
	return c.http.SendAndParse(ctx, &tfhttp.RequestOptions{
		Method: tfhttp.MethodPost,
		URL:    c.cfg.BaseURL + path,
		Body:   body,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"X-API-Key":    c.cfg.APIKey,
			"X-Signature":  sign(c.cfg.APISecret, body),
		},
	}, dest)
}

func toPayload(req *models.OrderRequest) orderPayload {
	return orderPayload{
		Pair:       req.Pair,
		Side:       string(req.Side),
		Amount:     req.Amount,
		Type:       string(req.Type),
		Price:      req.Price,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		RequestID:  req.RequestID,
		Agent:      req.Agent,
	}
}
