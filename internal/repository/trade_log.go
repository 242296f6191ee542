package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/domain/repository"
)

// TradeOutcomeSchema creates the closed-trade log. ReplacingMergeTree on
// order_id keeps replayed writes idempotent.
var TradeOutcomeSchema = []string{
	`CREATE TABLE IF NOT EXISTS trade_outcomes (
		pair      String,
		order_id  String,
		pnl       Float64,
		opened_at DateTime,
		closed_at DateTime
	) ENGINE = ReplacingMergeTree(closed_at)
	ORDER BY (pair, order_id)`,
}

// ClickHouseTradeLog persists closed-trade outcomes for the Kelly
// history estimate.
type ClickHouseTradeLog struct {
	db    *sql.DB
	table string
}

// NewClickHouseTradeLog creates the trade log over an open connection.
func NewClickHouseTradeLog(db *sql.DB, table string) repository.TradeHistory {
	if table == "" {
		table = "trade_outcomes"
	}
	return &ClickHouseTradeLog{db: db, table: table}
}

func (s *ClickHouseTradeLog) Record(ctx context.Context, outcome *models.TradeOutcome) error {
	q := fmt.Sprintf("INSERT INTO %s (pair, order_id, pnl, opened_at, closed_at) VALUES (?, ?, ?, ?, ?)", s.table)
	openedAt := outcome.OpenedAt
	if openedAt.IsZero() {
		openedAt = outcome.ClosedAt
	}
	_, err := s.db.ExecContext(ctx, q,
		outcome.Pair,
		outcome.OrderID,
		outcome.PnL,
		openedAt,
		outcome.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("record trade outcome: %w", err)
	}
	return nil
}

func (s *ClickHouseTradeLog) Recent(ctx context.Context, pair string, limit int) ([]models.TradeOutcome, error) {
	if limit <= 0 {
		limit = 100
	}
	q := fmt.Sprintf("SELECT pair, order_id, pnl, opened_at, closed_at FROM %s WHERE pair = ? ORDER BY closed_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, pair, limit)
	if err != nil {
		return nil, fmt.Errorf("query trade outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.TradeOutcome
	for rows.Next() {
		var o models.TradeOutcome
		var openedAt, closedAt time.Time
		if err := rows.Scan(&o.Pair, &o.OrderID, &o.PnL, &openedAt, &closedAt); err != nil {
			return nil, fmt.Errorf("scan trade outcome: %w", err)
		}
		o.OpenedAt = openedAt
		o.ClosedAt = closedAt
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

func (s *ClickHouseTradeLog) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseTradeLog) Close() error {
	return nil // connection owned by pkg client
}
