package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tax/internal/assessment"
	"github.com/noah-isme/backend-tax/internal/config"
	"github.com/noah-isme/backend-tax/internal/health"
	"github.com/noah-isme/backend-tax/internal/obs"
	"github.com/noah-isme/backend-tax/internal/ratelimit"
	"github.com/noah-isme/backend-tax/internal/security"
)

type routerDeps struct {
	Config      *config.Config
	Logger      zerolog.Logger
	Tax         *assessment.Handler
	Health      health.Handler
	Limiter     ratelimit.Allower
	HTTPMetrics *obs.HTTPMetrics
	Tracing     bool
}

func newRouter(d routerDeps) http.Handler {
	cfg := d.Config
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.HTTPMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.HTTPMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{
		Enable:                cfg.SecurityHeadersEnabled,
		EnableHSTS:            cfg.HSTSEnabled,
		HSTSIncludeSubdomains: true,
	}.Middleware)

	if d.HTTPMetrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)

	limits := ratelimit.Handler{
		Limiter: d.Limiter,
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP, Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax},
		OnError: func(err error) {
			d.Logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}

	r.Route("/api/v1/tax", func(t chi.Router) {
		t.Use(limits.Middleware)
		t.Use(security.BodyLimit{Max: cfg.BodyLimitBytes}.Middleware)
		t.Get("/regimes", d.Tax.Regimes)
		t.Post("/calculate", d.Tax.Calculate)
		t.Post("/report", d.Tax.Report)
	})
	return r
}
