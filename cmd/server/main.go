package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"algoforge/internal/api"
	"algoforge/internal/app/service"
	"algoforge/internal/common/security"
	"algoforge/internal/domain/repository"
	"algoforge/internal/judge"
	"algoforge/internal/platform/cache"
	"algoforge/internal/platform/config"
	"algoforge/internal/platform/database"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// 1. Load Configuration
	cfg := config.Load()
	log.Info().Msg("configuration loaded")

	// 2. Initialize Database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to database")
	}
	defer db.Close()
	log.Info().Msg("database connected")

	// 3. Initialize Redis
	rdb, err := cache.Connect(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not connect to redis")
	}
	defer rdb.Close()
	log.Info().Msg("redis connected")

	// 4. Security primitives
	tokenAuth := security.NewTokenAuth(cfg)
	blocklist := security.NewTokenBlocklist(rdb)

	// 5. Judge client
	judgeClient := judge.NewClient(cfg)

	// 6. Repositories
	userRepo := repository.NewPgUserRepository(db)
	problemRepo := repository.NewPgProblemRepository(db)
	submissionRepo := repository.NewPgSubmissionRepository(db)

	// 7. Services
	authService := service.NewAuthService(userRepo, tokenAuth, blocklist)
	problemService := service.NewProblemService(problemRepo, judgeClient, db)
	submissionService := service.NewSubmissionService(submissionRepo, problemRepo, judgeClient)

	// 8. Router & HTTP Server
	router := api.NewRouter(tokenAuth, blocklist, authService, problemService, submissionService)

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
		// Write timeout must outlast the judge polling window.
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.JudgeMaxWait + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().Str("port", cfg.APIPort).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-stop // Wait for interrupt signal

	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server shutdown failed")
	}

	log.Info().Msg("server stopped gracefully")
}
