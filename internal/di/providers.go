package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"TradeFlow/internal/domain/models"
	domrepo "TradeFlow/internal/domain/repository"
	"TradeFlow/internal/domain/service"
	"TradeFlow/internal/handler/api"
	internalrepo "TradeFlow/internal/repository"
	"TradeFlow/internal/service/gateway"
	"TradeFlow/internal/service/history"
	"TradeFlow/internal/service/stream"
	"TradeFlow/internal/services/indicators"
	"TradeFlow/internal/services/position"
	"TradeFlow/internal/services/risk"
	"TradeFlow/internal/usecase"
	"TradeFlow/pkg/cache"
	pkgch "TradeFlow/pkg/clickhouse"
	"TradeFlow/pkg/config"
	xhttp "TradeFlow/pkg/http"
	pkgkafka "TradeFlow/pkg/kafka"
	"TradeFlow/pkg/logger"
	"TradeFlow/pkg/metrics"
	"TradeFlow/pkg/queue"
	"TradeFlow/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	level, format := "info", "json"
	if cfg.Environment == "development" {
		level, format = "debug", "console"
	}
	return logger.New(&logger.Config{Level: level, Format: format, Output: "stdout"})
}

// ProvideMetrics creates the Prometheus recorder.
func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideRedisCache creates the Redis cache layer.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("parse redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("parse redis port: %w", err)
	}
	return cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideCandleStore creates the layered candle-history store.
func ProvideCandleStore(redisCache *cache.RedisCache, cfg *config.Config) domrepo.CandleStore {
	layered := cache.NewLayeredCache(redisCache)
	return history.New(layered, cfg.Signal.HistoryBars*5, cfg.Cache.RedisTTL)
}

// ProvideClickHouseClient creates the trade-log database client, nil
// when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.TradeOutcomeSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideTradeHistory creates the trade-outcome log, nil without
// ClickHouse.
func ProvideTradeHistory(chClient *pkgch.Client) domrepo.TradeHistory {
	if chClient == nil {
		return nil
	}
	return internalrepo.NewClickHouseTradeLog(chClient.DB(), "trade_outcomes")
}

// ProvideKafkaProducer creates the decisions producer, nil when Kafka
// is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideDecisionPublisher creates the Kafka decision publisher, nil
// without Kafka.
func ProvideDecisionPublisher(producer *pkgkafka.Producer, cfg *config.Config) domrepo.DecisionPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaDecisionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideGatewayClient creates the execution gateway client.
func ProvideGatewayClient(cfg *config.Config, log *logger.Logger) *gateway.Client {
	return gateway.New(gateway.Config{
		BaseURL:      cfg.Gateway.BaseURL,
		APIKey:       cfg.Gateway.APIKey,
		APISecret:    cfg.Gateway.APISecret,
		Timeout:      cfg.Gateway.Timeout,
		OrdersPerSec: cfg.Gateway.OrdersPerSec,
	}, log)
}

// ProvideExecutionGateway binds the gateway client as the order backend.
func ProvideExecutionGateway(client *gateway.Client) service.ExecutionGateway {
	return client
}

// ProvideAccountStateProvider binds the gateway client as the account
// snapshot source.
func ProvideAccountStateProvider(client *gateway.Client) service.AccountStateProvider {
	return client
}

// ProvideSignalAgent builds the indicator set from config and wires
// the fusion stage.
func ProvideSignalAgent(cfg *config.Config, log *logger.Logger, rec *metrics.Recorder) *usecase.SignalAgent {
	s := cfg.Signal
	var inds []indicators.Indicator
	for _, name := range s.Indicators {
		switch name {
		case indicators.NameEMA:
			inds = append(inds, indicators.NewEMA(s.EMA.Fast, s.EMA.Slow, s.EMA.Trend))
		case indicators.NameRSI:
			inds = append(inds, indicators.NewRSI(s.RSI.Period, s.RSI.Oversold, s.RSI.Overbought))
		case indicators.NameMACD:
			inds = append(inds, indicators.NewMACD(s.MACD.Fast, s.MACD.Slow, s.MACD.Signal))
		case indicators.NameSupportResistance:
			inds = append(inds, provideSR(cfg))
		default:
			log.Warn("unknown indicator in config", logger.String("indicator", name))
		}
	}
	return usecase.NewSignalAgent(usecase.SignalAgentConfig{
		Indicators:    inds,
		FusionMethod:  models.FusionMethod(s.FusionMethod),
		Weights:       s.Weights,
		MinAgreement:  s.MinAgreement,
		MinConfidence: s.MinConfidence,
	}, log, rec)
}

func provideSR(cfg *config.Config) *indicators.SupportResistance {
	s := cfg.Signal.SR
	return indicators.NewSupportResistance(s.Lookback, s.PivotWindow, s.ProximityPct/100, s.MinTouches)
}

// ProvideRiskAgent wires sizing, stops, Kelly and the limit checks.
// Percentages in config are human-scale and converted to fractions
// here.
func ProvideRiskAgent(
	cfg *config.Config,
	accounts service.AccountStateProvider,
	tradeHistory domrepo.TradeHistory,
	log *logger.Logger,
	rec *metrics.Recorder,
) *usecase.RiskAgent {
	r := cfg.Risk

	sizer := risk.NewPositionSizer(r.AccountBalance, r.RiskPerTrade)
	sizer.ATRPeriod = r.ATRPeriod
	sizer.ATRMultiplier = r.ATRMultiplier
	sizer.MinSize = r.MinPositionSize
	sizer.MaxSize = r.MaxPositionSize

	checker := risk.NewChecker()
	checker.MaxPositionSize = r.MaxPositionSize
	checker.MaxPositionValuePct = r.MaxPositionValuePct / 100
	checker.MaxOpenTrades = r.MaxOpenTrades
	checker.DailyLossLimitPct = r.MaxDailyLossPct / 100
	checker.MaxExposurePct = r.MaxExposurePct / 100

	stops := risk.NewStopLossCalculator()
	stops.ATRPeriod = r.ATRPeriod
	stops.ATRMultiplier = r.ATRMultiplier
	stops.DefaultStopPct = r.StopLossPct / 100
	stops.RiskReward = r.RiskRewardRatio
	stops.MinRiskReward = r.MinRiskReward
	stops.SRBufferPct = r.SRBufferPct / 100

	var kelly *risk.Kelly
	if r.UseKelly {
		kelly = risk.NewKelly()
		kelly.FractionalKelly = r.KellyFraction
		kelly.MaxFraction = r.MaxKellyFraction
	}

	return usecase.NewRiskAgent(usecase.RiskAgentConfig{
		Sizer:          sizer,
		Checker:        checker,
		Stops:          stops,
		Kelly:          kelly,
		SR:             provideSR(cfg),
		StopMethod:     models.StopMethod(r.StopLossMethod),
		StopPct:        r.StopLossPct / 100,
		RiskReward:     r.RiskRewardRatio,
		NumTargets:     r.TakeProfitTargets,
		KellyMinTrades: r.KellyMinTrades,
	}, accounts, tradeHistory, log, rec)
}

// ProvidePositionManager wires execution and position monitoring.
func ProvidePositionManager(
	cfg *config.Config,
	execGateway service.ExecutionGateway,
	log *logger.Logger,
	rec *metrics.Recorder,
) *usecase.PositionManager {
	p := cfg.Position
	executor := position.NewOrderExecutor(execGateway, log,
		position.WithDryRun(p.EnableDryRun),
		position.WithMaxRetries(p.MaxRetries),
		position.WithBackoff(func(attempt int) time.Duration {
			return p.RetryBackoff << uint(attempt)
		}),
	)
	trailing := position.NewTrailingStopManager(p.TrailingDistancePct/100, p.TrailingActivationPct/100)
	return usecase.NewPositionManager(executor, position.NewTakeProfitManager(), trailing, p.EnableTrailingStop, log, rec)
}

// ProvidePipeline chains the three agents.
func ProvidePipeline(
	signal *usecase.SignalAgent,
	riskAgent *usecase.RiskAgent,
	positions *usecase.PositionManager,
	store domrepo.CandleStore,
	publisher domrepo.DecisionPublisher,
	tradeHistory domrepo.TradeHistory,
	cfg *config.Config,
	log *logger.Logger,
	rec *metrics.Recorder,
) (*usecase.Pipeline, error) {
	tf, err := domrepo.ParseTimeframe(cfg.Signal.Timeframe)
	if err != nil {
		return nil, fmt.Errorf("signal timeframe: %w", err)
	}
	return usecase.NewPipeline(signal, riskAgent, positions, store, publisher, tradeHistory, tf, cfg.Signal.HistoryBars, log, rec), nil
}

// ProvideQueue creates the Redis work queue with the pipeline job
// registered.
func ProvideQueue(
	cfg *config.Config,
	redisCache *cache.RedisCache,
	pipeline *usecase.Pipeline,
	log *logger.Logger,
) *queue.RedisQueue {
	q := cfg.Redis.Queue
	jobs := []queue.Job{usecase.NewCandleJob(pipeline, log)}
	opts := []queue.RedisQueueOption{}
	if q.Name != "" {
		opts = append(opts, queue.WithKeyPrefix(q.Name))
	}
	return queue.NewRedisQueue(log, &queue.Config{
		Workers:    q.Workers,
		RetryLimit: q.RetryMax,
		RetryDelay: q.BackoffMin,
	}, redisCache.Client(), jobs, opts...)
}

// ProvideKafkaConsumer creates the ticks consumer, nil when Kafka is
// disabled.
func ProvideKafkaConsumer(cfg *config.Config, log *logger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.TicksTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(log,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideTicksHandler feeds consumed candles into the pipeline queue.
func ProvideTicksHandler(cfg *config.Config, q *queue.RedisQueue, rec *metrics.Recorder) pkgkafka.MessageHandler {
	if !cfg.Kafka.Enabled || cfg.Kafka.TicksTopic == "" {
		return nil
	}
	return usecase.NewKafkaTicksHandler(cfg.Kafka.TicksTopic, q, rec)
}

// ProvideMarketStream creates the WebSocket candle feed, nil when
// disabled.
func ProvideMarketStream(cfg *config.Config, log *logger.Logger) service.MarketStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.New(cfg.Stream.WebSocketURL, cfg.Signal.Timeframe, cfg.Stream.ReconnectDelay, cfg.Stream.PingInterval, log)
}

// ProvideHTTPHandler creates the API surface.
func ProvideHTTPHandler(log *logger.Logger, q *queue.RedisQueue, positions *usecase.PositionManager) xhttp.Handler {
	return api.NewPipelineEchoHandler(log, q, positions)
}

// ProvideApp assembles the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	handler xhttp.Handler,
	q *queue.RedisQueue,
	consumer *pkgkafka.Consumer,
	ticks pkgkafka.MessageHandler,
	marketStream service.MarketStream,
	chClient *pkgch.Client,
	publisher domrepo.DecisionPublisher,
) *server.App {
	return server.New(cfg, log, handler, q, consumer, ticks, marketStream, chClient, publisher)
}
