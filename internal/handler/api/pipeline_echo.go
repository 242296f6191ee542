package api

import (
	models "TradeFlow/internal/domain/models"
	"TradeFlow/internal/usecase"
	xhttp "TradeFlow/pkg/http"
	xlogger "TradeFlow/pkg/logger"
	"TradeFlow/pkg/queue"

	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PipelineEchoHandler exposes the candle webhook and position status
// endpoints over Echo.
type PipelineEchoHandler struct {
	logger     *xlogger.Logger
	dispatcher queue.Dispatcher
	positions  *usecase.PositionManager
}

func NewPipelineEchoHandler(logger *xlogger.Logger, dispatcher queue.Dispatcher, positions *usecase.PositionManager) *PipelineEchoHandler {
	return &PipelineEchoHandler{logger: logger, dispatcher: dispatcher, positions: positions}
}

func (h *PipelineEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/webhooks/candle", h.CandleWebhook)
	g.GET("/positions/:pair/status", h.PositionStatus)
	e.GET("/healthz", h.Health)
}

// CandleWebhook enqueues a pipeline run and acknowledges with 202.
func (h *PipelineEchoHandler) CandleWebhook(c echo.Context) error {
	req := &models.CandleWebhookRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	update := req.ToUpdate()
	if !update.HasSeries() && !update.HasBar() {
		return xhttp.BadRequestResponse(c, "either a bar or a candles series is required")
	}

	ctx := c.Request().Context()
	if err := h.dispatcher.Dispatch(ctx, usecase.MsgTypeCandleUpdate, update); err != nil {
		h.logger.Error("candle dispatch failed",
			xlogger.String("pair", update.Pair), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("pipeline temporarily unavailable"))
	}

	return xhttp.DataResponse(c, http.StatusAccepted, models.WebhookAccepted{
		TaskID: uuid.NewString(),
		Pair:   update.Pair,
		Status: "accepted",
	})
}

// PositionStatus returns the TP ladder and trailing stop snapshot.
func (h *PipelineEchoHandler) PositionStatus(c echo.Context) error {
	req := &models.PositionStatusRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	tp, trailing, remaining := h.positions.Status(req.Pair)
	if tp == nil && trailing == nil {
		return xhttp.NotFoundResponse(c, "no tracked position for pair")
	}
	return xhttp.SuccessResponse(c, models.PositionStatusResponse{
		Pair:       req.Pair,
		TakeProfit: tp,
		Trailing:   trailing,
		Remaining:  remaining,
	})
}

// Health is the liveness probe.
func (h *PipelineEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}
