package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TradeFlow/internal/domain/repository"
	"TradeFlow/internal/domain/service"
	"TradeFlow/internal/usecase"
	pkgch "TradeFlow/pkg/clickhouse"
	"TradeFlow/pkg/config"
	xhttp "TradeFlow/pkg/http"
	pkgkafka "TradeFlow/pkg/kafka"
	applogger "TradeFlow/pkg/logger"
	"TradeFlow/pkg/queue"
)

// App owns the lifecycle of every long-running component: the HTTP
// server, the work queue, the optional Kafka consumer and market
// stream, and the infrastructure clients behind them.
type App struct {
	cfg       *config.Config
	log       *applogger.Logger
	handler   xhttp.Handler
	queue     *queue.RedisQueue
	consumer  *pkgkafka.Consumer
	ticks     pkgkafka.MessageHandler
	stream    service.MarketStream
	chClient  *pkgch.Client
	publisher repository.DecisionPublisher

	httpServer *xhttp.Server
}

// New assembles the application; nil components are simply not started.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	q *queue.RedisQueue,
	consumer *pkgkafka.Consumer,
	ticks pkgkafka.MessageHandler,
	stream service.MarketStream,
	chClient *pkgch.Client,
	publisher repository.DecisionPublisher,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		handler:   handler,
		queue:     q,
		consumer:  consumer,
		ticks:     ticks,
		stream:    stream,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts everything and blocks until an interrupt arrives.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.queue.Start(); err != nil {
		return err
	}

	if a.consumer != nil && a.ticks != nil {
		a.consumer.RegisterHandler(a.ticks)
		if err := a.consumer.Start(); err != nil {
			a.log.Error("kafka consumer start failed", applogger.Error(err))
		} else {
			a.log.Info("kafka consumer running", applogger.String("topic", a.ticks.Topic()))
		}
	}

	if a.stream != nil {
		go a.runStream(ctx)
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)
	if err := a.httpServer.Start(); err != nil {
		return err
	}
	a.log.Info("tradeflow running",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("pairs", a.cfg.Pairs))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	a.log.Info("shutdown signal received")

	cancel()
	return a.shutdown()
}

// runStream keeps the market stream connected and pumps its candles
// into the pipeline queue.
func (a *App) runStream(ctx context.Context) {
	if err := a.stream.Connect(ctx); err != nil {
		a.log.Error("market stream connect failed", applogger.Error(err))
		return
	}
	if err := a.stream.Subscribe(a.cfg.Pairs...); err != nil {
		a.log.Error("market stream subscribe failed", applogger.Error(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-a.stream.Updates():
			if !ok {
				return
			}
			if err := a.queue.Dispatch(ctx, usecase.MsgTypeCandleUpdate, update); err != nil {
				a.log.Warn("stream candle dispatch failed",
					applogger.String("pair", update.Pair), applogger.Error(err))
			}
		case err := <-a.stream.Errors():
			a.log.Error("market stream failed", applogger.Error(err))
			return
		}
	}
}

func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("consumer stop error", applogger.Error(err))
		}
	}
	if err := a.queue.Stop(shutdownCtx); err != nil {
		a.log.Warn("queue stop error", applogger.Error(err))
	}
	if a.httpServer != nil {
		if err := a.httpServer.Stop(shutdownCtx); err != nil {
			a.log.Warn("http shutdown error", applogger.Error(err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("tradeflow stopped")
	return nil
}
