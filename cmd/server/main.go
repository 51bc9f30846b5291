package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sahamlab/signal-engine/internal/config"
	"github.com/sahamlab/signal-engine/internal/database"
	"github.com/sahamlab/signal-engine/internal/modules/analysis"
	analysisapi "github.com/sahamlab/signal-engine/internal/modules/analysis/api"
	"github.com/sahamlab/signal-engine/internal/modules/analysis/jobs"
	"github.com/sahamlab/signal-engine/internal/modules/universe"
	"github.com/sahamlab/signal-engine/internal/scheduler"
	"github.com/sahamlab/signal-engine/internal/server"
	"github.com/sahamlab/signal-engine/pkg/logger"
)

func main() {
	// Load configuration first so the logger honors LOG_LEVEL
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New(logger.Config{Level: "info", Pretty: true})
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting signal engine")

	// Main database (securities + news)
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// History database (daily prices)
	historyDB, err := universe.NewHistoryDB(cfg.HistoryDBPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history database")
	}
	defer historyDB.Close()

	// Universe module
	securityRepo := universe.NewSecurityRepository(db.Conn(), log)
	newsRepo := universe.NewNewsRepository(db.Conn(), log)
	universeService := universe.NewService(securityRepo, historyDB, newsRepo, log)
	universeHandlers := universe.NewHandlers(universeService, log)

	// Analysis module
	analysisService := analysis.NewService(log)
	ranker := analysis.NewRanker(analysisService, analysis.RankerConfig{
		Workers:           cfg.RankerWorkers,
		SmallCapThreshold: cfg.SmallCapThreshold,
	})
	picksCache := analysis.NewPicksCache(time.Duration(cfg.PicksCacheTTLSec) * time.Second)
	analysisHandlers := analysisapi.NewHandlers(analysisService, ranker, picksCache, universeService, log)

	// Scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	refreshJob := jobs.NewRefreshPicksJob(ranker, picksCache, universeService, log)
	if err := sched.AddJob("0 */15 * * * *", refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register picks refresh job")
	}

	// Warm the cache in the background so the first request is fast
	go func() {
		if err := sched.RunNow(refreshJob); err != nil {
			log.Warn().Err(err).Msg("Initial picks refresh failed")
		}
	}()

	// HTTP server
	srv := server.New(server.Config{
		Port:             cfg.Port,
		Log:              log,
		DB:               db,
		DevMode:          cfg.DevMode,
		UniverseHandlers: universeHandlers,
		AnalysisHandlers: analysisHandlers,
	})

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
