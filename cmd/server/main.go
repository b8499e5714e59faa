// Package main is the entry point for the Convexo funding engine, the service
// behind the business onboarding wizard's indicator report and the
// funding/exchange form's quotes.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Convexo-finance/fund-convexo-sub001/internal/clientdata"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/clients/exchangerate"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/clients/openerapi"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/config"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/database"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/modules/indicators"
	indicatorhandlers "github.com/Convexo-finance/fund-convexo-sub001/internal/modules/indicators/handlers"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/modules/rates"
	fundinghandlers "github.com/Convexo-finance/fund-convexo-sub001/internal/modules/rates/handlers"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/modules/rates/jobs"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/scheduler"
	"github.com/Convexo-finance/fund-convexo-sub001/internal/server"
	"github.com/Convexo-finance/fund-convexo-sub001/pkg/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Str("version", version).Msg("Starting funding engine")

	// Client data database persists resolved rates so a restart (or a full
	// provider outage) can still serve stale pricing.
	clientDataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open client data database")
	}
	defer clientDataDB.Close()

	if err := clientdata.EnsureSchema(clientDataDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize client data schema")
	}
	cacheRepo := clientdata.NewRepository(clientDataDB.Conn())

	// Optional shared Redis cache tier for multi-instance deployments.
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, continuing without shared cache")
			redisClient = nil
		} else {
			log.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
		}
		cancel()
	}

	rateService := rates.NewService(rates.Config{
		Primary:   exchangerate.NewClient(cfg.RateSourceTimeout, log),
		Secondary: openerapi.NewClient(cfg.RateSourceTimeout, log),
		Redis:     redisClient,
		CacheRepo: cacheRepo,
		CacheTTL:  cfg.RateCacheTTL,
		Log:       log,
	})

	calculator := indicators.NewCalculator(log)

	// Background jobs: warm rate caches and purge expired client data.
	syncJob := jobs.NewSyncJob(rateService, cfg.RateSourceTimeout*4, log)
	cleanupJob := clientdata.NewCleanupJob(cacheRepo, log)

	sched := scheduler.New(log)
	if err := sched.AddJob("@every 5m", syncJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register rate sync job")
	}
	if err := sched.AddJob("@daily", cleanupJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cleanup job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:              cfg.Port,
		DevMode:           cfg.DevMode,
		Log:               log,
		FundingHandlers:   fundinghandlers.NewHandler(rateService, syncJob, log),
		IndicatorHandlers: indicatorhandlers.NewHandler(calculator, log),
		SystemHandlers:    server.NewSystemHandlers(version, log),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
