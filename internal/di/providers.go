package di

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"StockPulse/internal/domain/repository"
	"StockPulse/internal/handler/api"
	internalrepo "StockPulse/internal/repository"
	"StockPulse/internal/service/eastmoney"
	svcmetrics "StockPulse/internal/service/metrics"
	"StockPulse/internal/services/fetcher"
	"StockPulse/internal/services/signals"
	"StockPulse/internal/usecase"
	"StockPulse/pkg/cache"
	"StockPulse/pkg/config"
	xhttp "StockPulse/pkg/http"
	pkgkafka "StockPulse/pkg/kafka"
	"StockPulse/pkg/logger"
	"StockPulse/pkg/metrics"
	"StockPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(logger.String("env", cfg.Environment)), nil
}

// ProvideRegistry creates the Prometheus registry every collector registers on.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.New(reg)
}

// ProvideCache creates the snapshot cache: memory only, or memory over Redis.
func ProvideCache(cfg *config.Config, l *logger.Logger) (cache.Cache, func(), error) {
	if !cfg.Cache.Redis.Enabled {
		mc := cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MemoryMaxSize))
		return mc, func() { _ = mc.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Cache.Redis.Addr),
		cache.WithRedisPassword(cfg.Cache.Redis.Password),
		cache.WithRedisDB(cfg.Cache.Redis.DB),
		cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		cache.WithRedisPool(10, 2, 5*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MemoryMaxSize))
	l.Info("redis cache enabled", logger.String("addr", cfg.Cache.Redis.Addr))
	return lc, func() {
		_ = lc.Close()
		if err := rc.Close(); err != nil {
			l.Warn("redis close error", logger.Error(err))
		}
	}, nil
}

// ProvideMarketData creates the Eastmoney provider.
func ProvideMarketData(cfg *config.Config, l *logger.Logger) repository.MarketDataProvider {
	em := cfg.Eastmoney
	return eastmoney.New(
		eastmoney.WithSnapshotURL(em.SnapshotURL),
		eastmoney.WithDatacenterURL(em.DatacenterURL),
		eastmoney.WithNewsURL(em.NewsURL),
		eastmoney.WithPageSize(em.PageSize),
		eastmoney.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(em.Timeout))),
		eastmoney.WithRateLimit(em.RPS, em.Burst),
		eastmoney.WithLogger(l),
	)
}

// ProvideRetryPolicy maps the fetch config onto a retry policy.
func ProvideRetryPolicy(cfg *config.Config) fetcher.Policy {
	f := cfg.Fetch
	return fetcher.Policy{
		MaxAttempts:    f.MaxAttempts,
		Backoff:        f.Backoff,
		MaxBackoff:     f.MaxBackoff,
		Multiplier:     f.Multiplier,
		AttemptTimeout: f.AttemptTimeout,
	}
}

// ProvideFetcher creates the shared fetcher with breakers and the snapshot cache.
func ProvideFetcher(cfg *config.Config, c cache.Cache, m repository.Metrics, l *logger.Logger) *fetcher.Fetcher {
	return fetcher.New(
		fetcher.WithCache(c),
		fetcher.WithMetrics(m),
		fetcher.WithLogger(l),
		fetcher.WithBreaker(fetcher.BreakerSettings{
			ConsecutiveFailures: cfg.Fetch.Breaker.ConsecutiveFailures,
			OpenTimeout:         cfg.Fetch.Breaker.OpenTimeout,
		}),
	)
}

// ProvideThresholds maps the analysis config onto deriver thresholds.
func ProvideThresholds(cfg *config.Config) signals.Thresholds {
	t := cfg.Analysis.Thresholds
	return signals.Thresholds{
		ActiveVolumeRatio: t.ActiveVolumeRatio,
		LowValuationPE:    t.LowValuationPE,
		HighTurnoverRate:  t.HighTurnoverRate,
		LowTurnoverRate:   t.LowTurnoverRate,
		HealthyROE:        t.HealthyROE,
	}
}

// ProvideReportPublisher creates the Kafka report sink, or nil when disabled.
func ProvideReportPublisher(cfg *config.Config, reg *prometheus.Registry, l *logger.Logger) (repository.ReportPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return nil, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.MaxAttempts),
		pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	pub := internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Topic)
	l.Info("kafka report sink enabled",
		logger.Strings("brokers", cfg.Kafka.Brokers),
		logger.String("topic", cfg.Kafka.Topic),
	)
	return pub, func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", logger.Error(err))
		}
	}, nil
}

// ProvideAnalyzer creates the analyze use case.
func ProvideAnalyzer(
	cfg *config.Config,
	provider repository.MarketDataProvider,
	f *fetcher.Fetcher,
	policy fetcher.Policy,
	thresholds signals.Thresholds,
	pub repository.ReportPublisher,
	m repository.Metrics,
	l *logger.Logger,
) *usecase.Analyzer {
	return usecase.NewAnalyzer(provider, f,
		usecase.WithRetryPolicy(policy),
		usecase.WithThresholds(thresholds),
		usecase.WithSnapshotTTL(cfg.Cache.SnapshotTTL),
		usecase.WithDefaultDeadline(cfg.Analysis.Deadline),
		usecase.WithAnalyzerNewsLimit(cfg.Analysis.NewsLimit),
		usecase.WithPublisher(pub),
		usecase.WithAnalyzerMetrics(m),
		usecase.WithAnalyzerLogger(l),
	)
}

// ProvideEndpointMetrics creates API endpoint collectors.
func ProvideEndpointMetrics(reg *prometheus.Registry) *svcmetrics.EndpointMetrics {
	return svcmetrics.NewEndpointMetrics(reg)
}

// ProvideAnalyzeHandler creates the Echo handler.
func ProvideAnalyzeHandler(l *logger.Logger, a *usecase.Analyzer, m *svcmetrics.EndpointMetrics, policy fetcher.Policy) *api.AnalyzeEchoHandler {
	return api.NewAnalyzeEchoHandler(l, a, m, policy)
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.AnalyzeEchoHandler, reg *prometheus.Registry, l *logger.Logger) *xhttp.Server {
	metricsPath := cfg.Metrics.Path
	if cfg.Metrics.Disabled {
		metricsPath = ""
	}
	return xhttp.NewServer(h,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(metricsPath, reg, reg),
		xhttp.WithLogger(l),
	)
}

// ProvideApp creates the application server.
func ProvideApp(srv *xhttp.Server, l *logger.Logger) *server.App {
	return server.New(srv, l)
}
