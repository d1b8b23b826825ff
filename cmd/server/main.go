package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/waldear/finanzas/internal/config"
	"github.com/waldear/finanzas/internal/database"
	"github.com/waldear/finanzas/internal/modules/audit"
	"github.com/waldear/finanzas/internal/modules/budgets"
	"github.com/waldear/finanzas/internal/modules/debts"
	"github.com/waldear/finanzas/internal/modules/obligations"
	"github.com/waldear/finanzas/internal/modules/recurring"
	"github.com/waldear/finanzas/internal/modules/transactions"
	"github.com/waldear/finanzas/internal/scheduler"
	"github.com/waldear/finanzas/internal/server"
	"github.com/waldear/finanzas/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Finanzas")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	err = db.Migrate(
		transactions.Schema,
		obligations.Schema,
		debts.Schema,
		budgets.Schema,
		recurring.Schema,
		audit.Schema,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	sched := scheduler.New(log)
	if err := registerJobs(sched, db, log); err != nil {
		log.Fatal().Err(err).Msg("Failed to register jobs")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Port:    cfg.Port,
		Log:     log,
		DB:      db,
		Config:  cfg,
		DevMode: cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

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

func registerJobs(sched *scheduler.Scheduler, db *database.DB, log zerolog.Logger) error {
	recurringRepo := recurring.NewRepository(db.Conn(), log)
	return sched.AddJob("10 0 * * *", recurring.NewAdvanceJob(recurringRepo, log))
}
