package di

import (
	"context"
	"fmt"
	"time"

	"RiskDesk/internal/domain/repository"
	"RiskDesk/internal/handler/api"
	internalrepo "RiskDesk/internal/repository"
	"RiskDesk/internal/services/features"
	"RiskDesk/internal/services/ratelimit"
	"RiskDesk/internal/services/registry"
	"RiskDesk/internal/usecase"
	"RiskDesk/pkg/cache"
	pkgch "RiskDesk/pkg/clickhouse"
	"RiskDesk/pkg/config"
	pkgkafka "RiskDesk/pkg/kafka"
	"RiskDesk/pkg/logger"
	"RiskDesk/pkg/metrics"
	"RiskDesk/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSocialSecurity creates the social security provider client.
func ProvideSocialSecurity(cfg *config.Config) repository.SocialSecurityProvider {
	return internalrepo.NewSocialSecurityClient(
		cfg.Providers.SocialSecurityURL,
		cfg.Providers.SocialSecurityToken,
		cfg.Providers.Timeout,
	)
}

// ProvideOpenFinance creates the open finance provider client.
func ProvideOpenFinance(cfg *config.Config) repository.OpenFinanceProvider {
	return internalrepo.NewOpenFinanceClient(
		cfg.Providers.OpenFinanceURL,
		cfg.Providers.OpenFinanceToken,
		cfg.Providers.Timeout,
	)
}

// ProvideFeatureBuilder creates the upstream feature builder.
func ProvideFeatureBuilder(
	social repository.SocialSecurityProvider,
	openFi repository.OpenFinanceProvider,
	log *logger.Logger,
) *features.Builder {
	return features.NewBuilder(social, openFi, log)
}

// ProvideRegistry creates the lazy model/scorecard/pricing registry.
func ProvideRegistry(cfg *config.Config, log *logger.Logger) *registry.Registry {
	return registry.New(cfg, log)
}

// ProvideDecisionSink creates the decision event sink for the configured
// backend. The sink owns its client and closes it on Close.
func ProvideDecisionSink(cfg *config.Config) (repository.DecisionSink, error) {
	switch cfg.Backend.Type {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithBatch(cfg.Kafka.BatchSize, cfg.Kafka.BatchBytes, cfg.Kafka.Linger),
			pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.ReadTimeout),
			pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
			pkgkafka.WithAsync(cfg.Kafka.Async),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaSink(producer, cfg.Kafka.Topic), nil

	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.ClickHouse.Host),
			pkgch.WithPort(cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithMaxConnections(10, 5),
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

		sink, err := internalrepo.NewClickHouseSink(ctx, client)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse sink: %w", err)
		}
		return sink, nil

	default:
		return internalrepo.NewNoopSink(), nil
	}
}

// ProvideDecisionProcessor creates the background decision drain.
func ProvideDecisionProcessor(
	sink repository.DecisionSink,
	metrics repository.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *usecase.DecisionProcessor {
	return usecase.NewDecisionProcessor(
		sink,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
		log,
	)
}

// ProvideScoring creates the scoring use case.
func ProvideScoring(
	reg *registry.Registry,
	builder *features.Builder,
	processor *usecase.DecisionProcessor,
	metrics repository.Metrics,
	cfg *config.Config,
	log *logger.Logger,
) *usecase.Scoring {
	return usecase.NewScoring(reg, builder, processor, metrics, cfg, log)
}

// ProvideCache creates the decision cache. Returns nil when caching is
// disabled; an empty addr falls back to the in-process cache.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Addr == "" {
		return cache.NewMemoryCache(), nil
	}
	return cache.NewRedisCache(&cache.RedisConfig{
		Addr:     cfg.Cache.Addr,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
}

// ProvideLimiter creates the per-client rate limiter, nil when disabled.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

// ProvideRiskHandler creates the HTTP handler for the risk API.
func ProvideRiskHandler(
	scoring *usecase.Scoring,
	cacheSvc cache.Service,
	limiter *ratelimit.Limiter,
	cfg *config.Config,
	log *logger.Logger,
) *api.RiskHandler {
	return api.NewRiskHandler(scoring, cacheSvc, limiter, cfg.Cache.DecisionTTL, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	handler *api.RiskHandler,
	processor *usecase.DecisionProcessor,
	cacheSvc cache.Service,
	log *logger.Logger,
) *server.App {
	return server.New(cfg, handler, processor, cacheSvc, log)
}
