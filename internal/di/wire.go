//go:build wireinject
// +build wireinject

package di

import (
	"StockPulse/internal/usecase"
	"StockPulse/pkg/config"
	"StockPulse/pkg/server"

	"github.com/google/wire"
)

var analyzerSet = wire.NewSet(
	// Observability
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,

	// Infrastructure
	ProvideCache,
	ProvideMarketData,
	ProvideReportPublisher,

	// Fetching and analysis
	ProvideRetryPolicy,
	ProvideFetcher,
	ProvideThresholds,
	ProvideAnalyzer,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		analyzerSet,

		// HTTP
		ProvideEndpointMetrics,
		ProvideAnalyzeHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil, nil
}

// InitializeAnalyzer wires the analyze use case for one-shot CLI runs.
func InitializeAnalyzer(cfg *config.Config) (*usecase.Analyzer, func(), error) {
	wire.Build(analyzerSet)
	return &usecase.Analyzer{}, nil, nil
}
