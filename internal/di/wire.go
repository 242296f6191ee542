//go:build wireinject
// +build wireinject

package di

import (
	"TradeFlow/pkg/config"
	"TradeFlow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideGatewayClient,
		ProvideMarketStream,

		// Repositories
		ProvideCandleStore,
		ProvideTradeHistory,
		ProvideDecisionPublisher,
		ProvideExecutionGateway,
		ProvideAccountStateProvider,

		// Agents
		ProvideSignalAgent,
		ProvideRiskAgent,
		ProvidePositionManager,
		ProvidePipeline,

		// Transport
		ProvideQueue,
		ProvideTicksHandler,
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
