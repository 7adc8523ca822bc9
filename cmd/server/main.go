package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arnavshah/autoschedule-api/pkg/config"
	"github.com/arnavshah/autoschedule-api/pkg/logging"
	"github.com/arnavshah/autoschedule-api/pkg/router"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load .env if it exists
	// Try root and parent directories for flexibility
	config.LoadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := logging.Setup("production")
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := logging.Setup(cfg.Environment)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, cleanup, err := router.Setup(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not set up server")
	}
	defer cleanup()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("could not run server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
