package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/glowdesk/scheduling/internal/api/router"
	"github.com/glowdesk/scheduling/internal/appointments"
	"github.com/glowdesk/scheduling/internal/availability"
	"github.com/glowdesk/scheduling/internal/bookingflow"
	"github.com/glowdesk/scheduling/internal/catalog"
	appconfig "github.com/glowdesk/scheduling/internal/config"
	"github.com/glowdesk/scheduling/internal/http/handlers"
	"github.com/glowdesk/scheduling/internal/observability/metrics"
	"github.com/glowdesk/scheduling/internal/settings"
	"github.com/glowdesk/scheduling/internal/staff"
	"github.com/glowdesk/scheduling/pkg/logging"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting scheduling API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	registry := prometheus.NewRegistry()
	schedMetrics := metrics.NewSchedulingMetrics(registry)

	// Postgres-backed stores when a database is configured; in-memory
	// fallbacks keep local development working without one.
	var (
		staffRepo   staff.Repository   = staff.NewInMemoryRepository()
		catalogRepo catalog.Repository = catalog.NewInMemoryRepository()
		store       appointments.Store = appointments.NewMemoryStore()
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		staffRepo = staff.NewPostgresRepository(pool)
		catalogRepo = catalog.NewPostgresRepository(pool)
		store = appointments.NewPostgresStore(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var settingsStore *settings.Store
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		settingsStore = settings.NewStore(redis.NewClient(opts), settings.Defaults{
			Timezone:               cfg.DefaultTimezone,
			SlotGranularityMinutes: cfg.SlotGranularityMinutes,
			MinimumLeadTime:        cfg.MinimumLeadTime,
		})
	} else {
		logger.Warn("REDIS_ADDR not set, tenant settings fall back to defaults")
	}

	availabilityService := availability.NewService(staffRepo, store, settingsStore, schedMetrics, logger)
	guard := appointments.NewGuard(store, staffRepo, settingsStore, schedMetrics, logger, cfg.MinimumLeadTime)
	flowEngine := bookingflow.NewEngine(catalogRepo, staffRepo, availabilityService, guard, logger)

	routerCfg := &router.Config{
		Logger:             logger,
		Scheduling:         handlers.NewSchedulingHandler(catalogRepo, availabilityService, guard, flowEngine, logger),
		AdminAppointments:  handlers.NewAdminAppointmentsHandler(store, logger),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	if settingsStore != nil {
		routerCfg.AdminSettings = handlers.NewAdminSettingsHandler(settingsStore, logger)
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
