package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dashboardapp "github.com/affiliate/backend/internal/application/dashboard"
	ledgerapp "github.com/affiliate/backend/internal/application/ledger"
	onboardingapp "github.com/affiliate/backend/internal/application/onboarding"
	"github.com/affiliate/backend/internal/infrastructure/auth"
	"github.com/affiliate/backend/internal/infrastructure/cache"
	"github.com/affiliate/backend/internal/infrastructure/catalog"
	"github.com/affiliate/backend/internal/infrastructure/config"
	"github.com/affiliate/backend/internal/infrastructure/event"
	"github.com/affiliate/backend/internal/infrastructure/logger"
	"github.com/affiliate/backend/internal/infrastructure/platform"
	"github.com/affiliate/backend/internal/infrastructure/telemetry"
	"github.com/affiliate/backend/internal/interfaces/http/handler"
	"github.com/affiliate/backend/internal/interfaces/http/middleware"
	"github.com/affiliate/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := logger.FromLogConfig(cfg.Log)
	bootLog, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	tel := setupTelemetry(ctx, cfg, bootLog)
	defer tel.shutdown(bootLog)

	// Re-create the logger so records also reach the OTLP log pipeline
	log, err := logger.New(logCfg, telemetry.NewZapOTELCore(tel.logs, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		bootLog.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting affiliate gateway",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Stores
	stores, err := cache.NewStoreFactory(cfg.Redis, cfg.Onboarding.SessionTTL,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStores(ctx)
	if err != nil {
		log.Fatal("Failed to create session stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing session stores", zap.Error(err))
		}
	}()

	catalogProvider, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		log.Fatal("Failed to load catalog", zap.Error(err), zap.String("path", cfg.Catalog.Path))
	}

	// Prometheus registry for upstream client metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	platformMetrics, err := platform.NewMetrics(registry)
	if err != nil {
		log.Fatal("Failed to register platform metrics", zap.Error(err))
	}
	platformClient := platform.NewClient(cfg.Platform,
		platform.WithMetrics(platformMetrics),
		platform.WithLogger(log.Named("platform")),
	)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter: tel.metrics.Meter("affiliate.business"),
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}

	// Application services
	onboardingService := onboardingapp.NewOnboardingService(stores.Sessions, platformClient, catalogProvider,
		onboardingapp.WithLinkBaseURL(cfg.Onboarding.LinkBaseURL),
		onboardingapp.WithLogger(log.Named("onboarding")),
	)
	onboardingService.SetBusinessMetrics(businessMetrics)

	ledgerService := ledgerapp.NewLedgerService(platformClient, catalogProvider, stores.InFlight, log.Named("ledger"))
	ledgerService.SetBusinessMetrics(businessMetrics)

	dashboardService := dashboardapp.NewDashboardService(stores.Sessions, catalogProvider, nil, log.Named("dashboard"))

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLogHandler(log))
	if cfg.Events.AMQPEnabled {
		forwarder, err := event.DialAMQPForwarder(cfg.Events, log)
		if err != nil {
			log.Fatal("Failed to connect AMQP event forwarder", zap.Error(err))
		}
		defer func() {
			if err := forwarder.Close(); err != nil {
				log.Error("Error closing AMQP forwarder", zap.Error(err))
			}
		}()
		eventBus.Subscribe(forwarder)
	}
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := eventBus.Stop(stopCtx); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()
	onboardingService.SetEventPublisher(eventBus)

	// HTTP
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Order matters: request ID first so every later layer can log it,
	// tracing before the logger so log lines carry the trace ID.
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = cfg.Telemetry.ServiceName
	tracingCfg.Enabled = cfg.Telemetry.Enabled
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Tracing(tracingCfg))
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(middleware.CORSConfigFrom(cfg.HTTP)))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Profiling(middleware.ProfilingConfig{
		Enabled:   cfg.Telemetry.ProfilingEnabled,
		SkipPaths: middleware.DefaultProfilingConfig().SkipPaths,
	}))

	httpMetrics, err := middleware.HTTPMetrics(tel.metrics.Meter("http.server"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)

	engine.GET("/health", handler.NewHealthHandler(cfg.App.Name, version, stores).Health)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})))

	apiMiddleware := []gin.HandlerFunc{
		middleware.JWTAuth(middleware.JWTMiddlewareConfig{
			JWTService: auth.NewJWTService(cfg.JWT),
			Logger:     log,
		}),
		middleware.TraceEnricher(),
	}
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer limiter.Close()
		apiMiddleware = append(apiMiddleware, middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(apiMiddleware...),
	).Register(
		router.OnboardingRoutes(handler.NewOnboardingHandler(onboardingService)),
		router.LedgerRoutes(handler.NewLedgerHandler(ledgerService)),
		router.DashboardRoutes(handler.NewDashboardHandler(dashboardService)),
	).Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr), zap.String("store", stores.Backend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}

type telemetryProviders struct {
	traces   *telemetry.TracerProvider
	metrics  *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
}

// setupTelemetry starts the OTLP pipelines and the profiler. Failures are
// logged and leave the affected signal disabled.
func setupTelemetry(ctx context.Context, cfg *config.Config, log *zap.Logger) *telemetryProviders {
	t := &telemetryProviders{}
	tc := cfg.Telemetry

	var err error
	t.traces, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("Tracing disabled", zap.Error(err))
		t.traces, _ = telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: tc.ServiceName}, log)
	}

	t.metrics, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("OTLP metrics disabled", zap.Error(err))
		t.metrics, _ = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: tc.ServiceName}, log)
	}

	t.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, log)
	if err != nil {
		log.Warn("OTLP logs disabled", zap.Error(err))
		t.logs = nil
	}

	t.profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         tc.ProfilingEnabled,
		ServerAddress:   tc.PyroscopeAddress,
		ApplicationName: tc.ServiceName,
	}, log)
	if err != nil {
		log.Warn("Profiling disabled", zap.Error(err))
		t.profiler = nil
	}
	if t.profiler != nil && t.profiler.IsEnabled() && t.traces.IsEnabled() {
		if err := t.traces.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles disabled", zap.Error(err))
		}
	}

	return t
}

func (t *telemetryProviders) shutdown(log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if t.profiler != nil {
		_ = t.profiler.Stop()
	}
	if err := t.traces.Shutdown(ctx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := t.metrics.Shutdown(ctx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if t.logs != nil {
		if err := t.logs.Shutdown(ctx); err != nil {
			log.Error("Error shutting down logger provider", zap.Error(err))
		}
	}
}
