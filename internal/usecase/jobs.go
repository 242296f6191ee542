package usecase

import (
	"context"
	"fmt"

	"TradeFlow/internal/domain/models"
	"TradeFlow/pkg/logger"
	"TradeFlow/pkg/queue"
)

// MsgTypeCandleUpdate labels queued pipeline triggers.
const MsgTypeCandleUpdate = "candle.update"

// CandleJob runs the decision pipeline for queued candle updates. A
// failed run returns the error so the queue retries it with backoff.
type CandleJob struct {
	pipeline *Pipeline
	log      *logger.Logger
}

func NewCandleJob(pipeline *Pipeline, log *logger.Logger) *CandleJob {
	return &CandleJob{pipeline: pipeline, log: log}
}

func (j *CandleJob) Name() string { return "candle-pipeline" }
func (j *CandleJob) Type() string { return MsgTypeCandleUpdate }

func (j *CandleJob) Handle(ctx context.Context, payload interface{}) error {
	update, err := queue.ParsePayload[models.CandleUpdate](payload)
	if err != nil {
		return fmt.Errorf("parse candle update: %w", err)
	}

	result, err := j.pipeline.HandleCandle(ctx, update)
	if err != nil {
		return err
	}

	if result.Position != nil {
		j.log.Info("pipeline completed with execution",
			logger.String("pair", result.Pair),
			logger.String("status", string(result.Position.Status)))
	}
	return nil
}

var _ queue.Job = (*CandleJob)(nil)
