//go:build wireinject
// +build wireinject

package di

import (
	"RiskDesk/pkg/config"
	"RiskDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream provider clients
		ProvideSocialSecurity,
		ProvideOpenFinance,

		// Scoring pipeline
		ProvideFeatureBuilder,
		ProvideRegistry,
		ProvideDecisionSink,
		ProvideDecisionProcessor,
		ProvideScoring,

		// API surface
		ProvideCache,
		ProvideLimiter,
		ProvideRiskHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
