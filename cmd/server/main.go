package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/profile-setup/internal/config"
	"github.com/stemsi/profile-setup/internal/echo"
	"github.com/stemsi/profile-setup/internal/form"
	"github.com/stemsi/profile-setup/internal/handler"
	"github.com/stemsi/profile-setup/internal/logger"
	"github.com/stemsi/profile-setup/internal/middleware"
	"github.com/stemsi/profile-setup/internal/router"
	"github.com/stemsi/profile-setup/internal/service"
	"github.com/stemsi/profile-setup/internal/validator"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("echo_url", cfg.EchoURL).
		Msg("Starting Profile Setup")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Wire Services ─────────────────────────────────────────────────
	echoClient := echo.NewClient(cfg.EchoURL, echo.WithTimeout(cfg.EchoTimeout))
	views := form.NewRegistry(log)
	profileService := service.NewProfileService(echoClient, log)

	submitLimiter := middleware.NewRateLimiter(cfg.SubmitRateLimit, time.Minute)

	handlers := &router.Handlers{
		Page:          handler.NewPageHandler(views, profileService, log),
		View:          handler.NewViewHandler(views, profileService),
		WS:            handler.NewWSHandler(views, profileService, submitLimiter, log, cfg.AllowedOrigins),
		SubmitLimiter: submitLimiter,
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router.SetupRouter(handlers, cfg),
	}

	// ─── Run ───────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return views.RunSweeper(gctx, cfg.ViewIdleTTL, cfg.ViewSweepInterval)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down gracefully...")
		return shutdown(srv, profileService, log)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
	log.Info().Msg("Shutdown complete")
}

// shutdown stops accepting requests, then gives in-flight submissions the
// remainder of the timeout to finish.
func shutdown(srv *http.Server, profiles *service.ProfileService, log zerolog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	if err := profiles.Wait(ctx); err != nil {
		log.Warn().Err(err).Msg("Submissions still in flight at exit")
	}
	return nil
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
