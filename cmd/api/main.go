package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Randallflagg19/travel/internal/catalog"
	"github.com/Randallflagg19/travel/internal/config"
	"github.com/Randallflagg19/travel/internal/httpx"
	"github.com/Randallflagg19/travel/internal/ingest"
	"github.com/Randallflagg19/travel/internal/logging"
	"github.com/Randallflagg19/travel/internal/platform/cloudinary"
	"github.com/Randallflagg19/travel/internal/user"
)

func main() {
	config.LoadEnvFiles()
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool := mustOpenDB(ctx, cfg.Database.DSN)
	defer dbPool.Close()

	catalogRepo := catalog.NewPostgresRepo(dbPool, cfg.Database.QueryTimeout)
	userRepo := user.NewPostgresRepo(dbPool, cfg.Database.QueryTimeout)

	// Interface values stay nil when the provider is not configured.
	var (
		dam     ingest.DAM
		deleter catalog.DAMDeleter
	)
	if cfg.Cloudinary.Enabled() {
		client := cloudinary.NewClient(cloudinary.Config{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
			BaseURL:   cfg.Cloudinary.BaseURL,
			RPS:       cfg.Cloudinary.RPS,
			Timeout:   cfg.Cloudinary.Timeout,
		})
		dam, deleter = client, client
	} else {
		logging.Warn().Msg("cloudinary credentials missing; import and provider deletes are disabled")
	}

	catalogService := catalog.NewService(catalogRepo, deleter, cfg.Import.DeleteTimeout)
	importService := ingest.NewService(dam, catalog.NewWriter(catalogRepo), ingest.ConfigFrom(cfg.Import))
	userService := user.NewService(userRepo)

	limiter := httpx.NewRateLimitMiddleware(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	defer limiter.Close()

	router := newRouter(cfg, handlers{
		catalog: catalog.NewHTTPHandler(catalogService),
		ingest:  ingest.NewHTTPHandler(importService, userService, cfg.Import.RunTimeout),
		users:   user.NewHTTPHandler(userService),
		ready:   dbPool.Ping,
	}, limiter)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("server error")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

func mustOpenDB(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logging.Fatal().Err(err).Msg("cannot create db pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		logging.Fatal().Err(err).Str("dsn", redactDSN(dsn)).Msg("cannot ping database")
	}
	logging.Info().Msg("database connection OK")
	return pool
}

func redactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
