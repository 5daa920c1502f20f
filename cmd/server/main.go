package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/dealflow/internal/config"
	"github.com/aristath/dealflow/internal/database"
	"github.com/aristath/dealflow/internal/events"
	"github.com/aristath/dealflow/internal/modules/analytics"
	"github.com/aristath/dealflow/internal/modules/cash_flows"
	"github.com/aristath/dealflow/internal/modules/deals"
	dealjobs "github.com/aristath/dealflow/internal/modules/deals/jobs"
	"github.com/aristath/dealflow/internal/modules/partnership"
	"github.com/aristath/dealflow/internal/modules/waterfall"
	"github.com/aristath/dealflow/internal/scheduler"
	"github.com/aristath/dealflow/internal/server"
	"github.com/aristath/dealflow/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info"})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting dealflow")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.InitSchemas(deals.InitSchema, cash_flows.InitSchema); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schemas")
	}

	// Wire up modules
	eventManager := events.NewManager(log)
	loader := partnership.NewLoader(log)
	engine := waterfall.NewService(cfg.CacheTTL, log)

	dealRepo := deals.NewRepository(db.Conn(), log)
	flowRepo := cash_flows.NewRepository(db.Conn(), log)
	dealService := deals.NewService(dealRepo, flowRepo, engine, loader, eventManager, log)
	analyticsService := analytics.NewService(flowRepo, log)

	// Register deals defined on disk
	if cfg.PartnershipsDir != "" {
		if _, err := dealService.Bootstrap(cfg.PartnershipsDir); err != nil {
			log.Fatal().Err(err).Str("dir", cfg.PartnershipsDir).Msg("Failed to bootstrap deal definitions")
		}
	}

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	systemHandlers := server.NewSystemHandlers(log, db, dealRepo, flowRepo, sched)

	// Register background jobs
	refreshJob := dealjobs.NewRefreshJob(dealService, log)
	if err := sched.AddJob("@hourly", refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}
	if err := sched.AddJob("@every 6h", scheduler.NewHealthCheckJob(db, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register health check job")
	}
	systemHandlers.SetJobs(refreshJob)

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:              cfg.Port,
		Log:               log,
		DB:                db,
		Config:            cfg,
		DevMode:           cfg.DevMode,
		DealHandlers:      deals.NewHandler(dealService, log),
		CashFlowHandlers:  cash_flows.NewHandler(flowRepo, log),
		AnalyticsHandlers: analytics.NewHandler(analyticsService, log),
		SystemHandlers:    systemHandlers,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
