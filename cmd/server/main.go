// Package main runs the Tamkeen API server: the public eligibility
// pipeline, the admin back office, and the realtime activity feed.
package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/httpapi"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/metrics"
	"github.com/yassinekamouss/tamkeen-sub000/internal/app/storage/postgres"
	"github.com/yassinekamouss/tamkeen-sub000/internal/config"
	"github.com/yassinekamouss/tamkeen-sub000/internal/middleware"
	"github.com/yassinekamouss/tamkeen-sub000/internal/platform/migrations"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	flag.Parse()

	log := logger.NewDefault("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("load configuration")
		os.Exit(1)
	}

	stores, cleanup, err := buildStores(cfg, log)
	if err != nil {
		log.WithError(err).Error("initialise storage")
		os.Exit(1)
	}
	defer cleanup()

	application, err := app.New(stores, []byte(cfg.JWTSecret), log)
	if err != nil {
		log.WithError(err).Error("initialise application")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		log.WithError(err).Error("start application")
		os.Exit(1)
	}

	router := httpapi.NewRouter(httpapi.Services{
		Programs:   application.Programs,
		Tests:      application.Tests,
		News:       application.News,
		Partners:   application.Partners,
		Admins:     application.Admins,
		Users:      application.Users,
		Stats:      application.Stats,
		Activities: application.Activities,
	}, application.Hub, httpapi.Config{
		UploadDir:     cfg.UploadDir,
		SecureCookies: cfg.SecureCookies,
	}, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst, log)
	cors := middleware.NewCORS(cfg.AllowedOrigins)
	handler := cors.Handler(limiter.Handler(metrics.InstrumentHandler(router)))

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr).Info("API server listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			cancel()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application stop")
	}

	log.Info("stopped")
}

// buildStores returns Postgres-backed stores when a database URL is
// configured, in-memory stores otherwise.
func buildStores(cfg config.Config, log *logger.Logger) (app.Stores, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set; using in-memory storage")
		return app.Stores{}, func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return app.Stores{}, nil, err
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return app.Stores{}, nil, err
	}
	if err := migrations.Apply(pingCtx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, err
	}

	store := postgres.New(db)
	stores := app.Stores{
		Programs:   store,
		Persons:    store,
		Tests:      store,
		News:       store,
		Partners:   store,
		Admins:     store,
		Sessions:   store,
		Activities: store,
	}
	log.Info("connected to Postgres")
	return stores, func() { db.Close() }, nil
}
