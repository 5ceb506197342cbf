// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/eventworks/season-registrations/internal/config"
	"github.com/eventworks/season-registrations/internal/database"
	"github.com/eventworks/season-registrations/internal/handler"
	"github.com/eventworks/season-registrations/internal/repository"
	"github.com/eventworks/season-registrations/internal/service"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// ── 1. Connect to MongoDB ────────────────────────────────────────────
	client, err := database.Connect(ctx, cfg.MongoURI, log)
	if err != nil {
		log.Error("database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = client.Disconnect(ctx) }()
	db := client.Database(cfg.MongoDatabase)
	log.Info("connected to mongodb", "database", cfg.MongoDatabase)

	// ── 2. Wire up layers ────────────────────────────────────────────────
	regRepo := repository.NewRegistrationRepository(db, log)
	eventRepo := repository.NewEventRepository(db, log)
	svc := service.NewRegistrationService(regRepo, eventRepo, cfg.UnitPrice, cfg.CatalogCacheTTL, log)
	regHandler := handler.NewRegistrationHandler(svc)

	// ── 3. Build the router ──────────────────────────────────────────────
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.Logger(log))     // structured access log
	r.Use(handler.CORS)            // permissive CORS for the form UI

	// Health
	r.Get("/health", handler.HealthCheck)

	// API routes
	r.Route("/registrations", func(r chi.Router) {
		r.Post("/", regHandler.CreateRegistration)
		r.Get("/", regHandler.ListRegistrations)
		r.Get("/export", regHandler.ExportRegistrations)
		r.Get("/season/{number}", regHandler.ListSeasonRegistrations)
		r.Get("/{id}", regHandler.GetRegistration)
		r.Patch("/{id}/status", regHandler.UpdateRegistrationStatus)
		r.Put("/{id}/events", regHandler.CorrectSeasonSelection)
		r.Delete("/{id}", regHandler.DeleteRegistration)
	})
	r.Get("/events", regHandler.ListEvents)
	r.Get("/events/season/{number}", regHandler.ListSeasonEvents)
	r.Get("/events/{slug}", regHandler.GetEvent)
	r.Get("/tiers", regHandler.ListTiers)

	// ── 4. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		log.Info("server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
