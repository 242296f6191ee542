package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/pkg/logger"

	"github.com/gorilla/websocket"
)

// Client is a MarketStream backed by a candle WebSocket feed. Closed
// bars arrive as JSON frames and are pushed into the updates channel;
// the pipeline consumes them exactly like webhook triggers.
type Client struct {
	url            string
	timeframe      string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	log            *logger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool

	updates chan *models.CandleUpdate
	errs    chan error
}

// New creates a stream client for the given feed URL.
func New(url, timeframe string, reconnectDelay, pingInterval time.Duration, log *logger.Logger) *Client {
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Client{
		url:            url,
		timeframe:      timeframe,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		log:            log,
		updates:        make(chan *models.CandleUpdate, 1024),
		errs:           make(chan error, 1),
	}
}

// Connect dials the feed and starts the read and ping loops.
func (c *Client) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.pingLoop(ctx)
	go c.readLoop(ctx)

	c.log.Info("market stream connected", logger.String("url", c.url))
	return nil
}

// Subscribe requests candle frames for the pairs.
func (c *Client) Subscribe(pairs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected {
		return fmt.Errorf("stream not connected")
	}
	for _, pair := range pairs {
		msg := map[string]string{"type": "subscribe", "channel": "candles", "pair": pair, "timeframe": c.timeframe}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", pair, err)
		}
		c.log.Info("subscribed to candle feed", logger.String("pair", pair))
	}
	return nil
}

// Updates streams closed candles.
func (c *Client) Updates() <-chan *models.CandleUpdate { return c.updates }

// Errors streams terminal read failures.
func (c *Client) Errors() <-chan error { return c.errs }

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Reconnect closes and re-dials after the configured delay.
func (c *Client) Reconnect(ctx context.Context, pairs ...string) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.reconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(pairs...)
}

// Close closes the connection. The updates channel stays open so a
// Reconnect can resume on the same consumer.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}

type candleFrame struct {
	Type      string  `json:"type"`
	Pair      string  `json:"pair"`
	Timeframe string  `json:"timeframe"`
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (c *Client) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			conn, ok := c.conn, c.connected
			c.mu.Unlock()
			if !ok {
				return
			}
			_ = conn.WriteMessage(websocket.PingMessage, nil)
		}
	}
}

func (c *Client) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		c.mu.Lock()
		conn, ok := c.conn, c.connected
		c.mu.Unlock()
		if !ok {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.connected = false
			c.mu.Unlock()
			select {
			case c.errs <- fmt.Errorf("stream read: %w", err):
			default:
			}
			return
		}

		var frame candleFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			continue
		}
		if frame.Type != "candle" || frame.Pair == "" {
			continue
		}

		update := &models.CandleUpdate{
			Pair:      frame.Pair,
			Timeframe: frame.Timeframe,
			Timestamp: frame.Timestamp,
			Open:      frame.Open,
			High:      frame.High,
			Low:       frame.Low,
			Close:     frame.Close,
			Volume:    frame.Volume,
		}
		select {
		case c.updates <- update:
		default:
			// drop on backpressure
		}
	}
}
