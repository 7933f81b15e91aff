// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	ticketing "github.com/eventhive/ticketing-api"
	"github.com/eventhive/ticketing-api/internal/auth"
	"github.com/eventhive/ticketing-api/internal/clock"
	"github.com/eventhive/ticketing-api/internal/config"
	"github.com/eventhive/ticketing-api/internal/database"
	"github.com/eventhive/ticketing-api/internal/handler"
	"github.com/eventhive/ticketing-api/internal/repository"
	"github.com/eventhive/ticketing-api/internal/service"
	"github.com/eventhive/ticketing-api/internal/stream"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// Local development keeps settings in a .env file; absence is fine.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	migrationsFS, err := fs.Sub(ticketing.MigrationsFS, "migrations")
	if err != nil {
		slog.Error("failed to load embedded migrations", "error", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(cfg.DatabaseURL, migrationsFS); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Wire up layers.
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	var publisher service.Publisher = stream.Noop{}
	if cfg.KafkaEnabled {
		kafka, err := stream.NewKafka(cfg.KafkaBrokers, cfg.KafkaClientID)
		if err != nil {
			slog.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		publisher = kafka
	}

	clk := clock.NewSystem()
	eventSvc := service.NewEventService(eventRepo, clk)
	bookingSvc := service.NewBookingService(eventRepo, bookingRepo, clk, publisher)

	identity := auth.NewJWTProvider(cfg.JWTSecret)
	eventHandler := handler.NewEventHandler(eventSvc)
	bookingHandler := handler.NewBookingHandler(bookingSvc)

	// Build the router.
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(handler.RequestLogger)   // structured access log

	r.Get("/health", handler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/events", eventHandler.ListEvents)
		r.Get("/events/{id}", eventHandler.GetEvent)

		r.Group(func(r chi.Router) {
			r.Use(handler.Authenticate(identity))
			r.Post("/events", eventHandler.CreateEvent)
			r.Put("/events/{id}/price", eventHandler.UpdatePrice)
			r.Post("/events/{id}/coupon", eventHandler.AddCoupon)
			r.Post("/events/{id}/promoters", eventHandler.AssignPromoter)
			r.Get("/bookings", bookingHandler.List)
			r.Post("/bookings", bookingHandler.Create)
			r.Get("/bookings/all", bookingHandler.ListAll)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
