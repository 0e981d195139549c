package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tax/internal/assessment"
	"github.com/noah-isme/backend-tax/internal/config"
	"github.com/noah-isme/backend-tax/internal/declaration"
	"github.com/noah-isme/backend-tax/internal/health"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/ratelimit"
	"github.com/noah-isme/backend-tax/internal/resilience"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracingEnabled := cfg.TracingEnabled
	if tracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "tax-api",
			Endpoint:      cfg.TracingEndpoint,
			Exporter:      cfg.TracingExporter,
			SamplingRatio: cfg.TracingSamplingRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracingEnabled = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	var taxMetrics *obs.TaxMetrics
	var httpMetrics *obs.HTTPMetrics
	var breakerMetrics *resilience.Metrics
	if cfg.MetricsEnabled {
		taxMetrics = obs.NewTaxMetrics(cfg.MetricsNamespace, nil)
		httpMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
		if breakerMetrics, err = resilience.NewMetrics(cfg.MetricsNamespace, nil); err != nil {
			logger.Error().Err(err).Msg("register breaker metrics")
		}
	}

	var (
		limiter ratelimit.Allower = ratelimit.NewMemoryLimiter()
		probes                    = map[string]health.Probe{}
	)
	if cfg.RedisURL != "" {
		redisClient, err := newRedis(ctx, cfg, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect redis")
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}()
		breaker := resilience.NewBreaker(resilience.Options{
			Target:      "redis",
			MinRequests: 5,
			OpenFor:     30 * time.Second,
			Metrics:     breakerMetrics,
			Logger:      &logger,
		})
		limiter = ratelimit.FallbackLimiter{
			Primary:   ratelimit.RedisLimiter{Client: redisClient, Prefix: "tax:rl:"},
			Secondary: limiter,
			Breaker:   breaker,
		}
		probes["redis"] = health.RedisProbe(redisClient)
	}

	validator := declaration.NewValidator(declaration.Options{Max80D: cfg.Max80D, DefaultEPF: cfg.DefaultEPF})
	handler := newRouter(routerDeps{
		Config:      cfg,
		Logger:      logger,
		Tax:         &assessment.Handler{Svc: assessment.NewService(validator, taxMetrics)},
		Health:      health.Handler{Probes: probes, Timeout: cfg.HealthRedisTimeout},
		Limiter:     limiter,
		HTTPMetrics: httpMetrics,
		Tracing:     tracingEnabled,
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

func newRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if cfg.TracingEnabled {
		if err := redisotel.InstrumentTracing(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis tracing")
		}
	}
	if cfg.MetricsEnabled {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			logger.Error().Err(err).Msg("instrument redis metrics")
		}
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.HealthRedisTimeout*10)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
