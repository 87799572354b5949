package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/config"
	"github.com/chris/aura-wagers/pkg/handlers"
	"github.com/chris/aura-wagers/pkg/handlers/respond"
	wshandlers "github.com/chris/aura-wagers/pkg/handlers/websockets"
	"github.com/chris/aura-wagers/pkg/middleware"
	"github.com/chris/aura-wagers/pkg/wiring"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := wiring.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to wire dependencies: %v", err)
	}
	defer app.Close()

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger))
	router.Use(middleware.Metrics)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/metrics", promhttp.Handler())
	router.Handle("/ws", wshandlers.NewHandler(app.Store))

	router.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthenticator([]byte(cfg.JWTSecret), logger))
		api.HandlerWithOptions(handlers.NewApiHandler(app.Engine), api.ChiServerOptions{
			BaseRouter:       r,
			ErrorHandlerFunc: respond.ParamError,
		})
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
		}
	}()

	slog.Info("starting server", "port", cfg.HTTPPort, "backend", cfg.Backend)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
