// Package main is the entry point for the Ruta Control API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/rutacontrol/backend/internal/auth"
	"github.com/rutacontrol/backend/internal/config"
	"github.com/rutacontrol/backend/internal/eligibility"
	"github.com/rutacontrol/backend/internal/handler"
	"github.com/rutacontrol/backend/internal/logging"
	"github.com/rutacontrol/backend/internal/metrics"
	"github.com/rutacontrol/backend/internal/middleware"
	"github.com/rutacontrol/backend/internal/repo"
	"github.com/rutacontrol/backend/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	// A missing .env is normal in production; the environment is used as is.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger, closeLog := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closeLog()
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Requirement table ------------------------------------------------
	registry, err := eligibility.NewRegistry(cfg.RequirementsFile)
	if err != nil {
		slog.Error("failed to load requirement table", "path", cfg.RequirementsFile, "error", err)
		os.Exit(1)
	}
	slog.Info("requirement table loaded", "path", cfg.RequirementsFile, "services", registry.Table().ServiceNames())

	// --- Services ---------------------------------------------------------
	m := metrics.New()
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	serviceRepo := repo.NewServiceRepo(pool)
	trips := service.TripRepos{
		Trips:    repo.NewTripRepo(pool),
		Drivers:  repo.NewDriverRepo(pool),
		Tractors: repo.NewTractorRepo(pool),
		Trailers: repo.NewTrailerRepo(pool),
		Services: serviceRepo,
		Stops:    repo.NewStopRepo(pool),
	}
	evaluator := eligibility.NewEvaluator(registry, cfg.TripWarnDays)

	srv := handler.NewServer(handler.Deps{
		Drivers:      service.NewDriverService(trips.Drivers, serviceRepo, registry),
		Tractors:     service.NewTractorService(trips.Tractors, serviceRepo, registry),
		Trailers:     service.NewTrailerService(trips.Trailers, serviceRepo, registry),
		Catalog:      service.NewCatalogService(serviceRepo),
		Trips:        service.NewTripService(trips, evaluator, m),
		Stops:        service.NewStopService(trips, trips.Stops, m),
		Users:        service.NewUserService(repo.NewUserRepo(pool), issuer),
		Stats:        service.NewStatsService(trips, registry, cfg.ListingWarnDays),
		Export:       service.NewExportService(repo.NewExportRepo(pool)),
		Requirements: service.NewRequirementsService(registry, m),
		Tokens:       issuer,
		PlateLimit:   middleware.NewRateLimiter(cfg.PlateCheckRPS, cfg.PlateCheckBurst).Handler,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → Metrics → CORS → MaxBodySize.
	// RealIP must precede the plate-check rate limiter, which keys on RemoteAddr.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewMetricsHandler(m))
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", m.Handler())
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
