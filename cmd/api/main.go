package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"legalease/internal/cache"
	"legalease/internal/config"
	"legalease/internal/database"
	"legalease/internal/handlers"
	"legalease/internal/jobs"
	"legalease/internal/log"
	"legalease/internal/queue"
	"legalease/internal/repository"
	"legalease/internal/server"
	"legalease/internal/service"
	"legalease/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	if cfg.Postgres.Migrate {
		if err := database.ApplyMigrations(dbPool); err != nil {
			logger.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}
	if err := objectStore.EnsureBucket(ctx); err != nil {
		logger.Warn().Err(err).Msg("ensure bucket failed")
	}

	clients := repository.NewClientRepository(dbPool)
	lawyers := repository.NewLawyerRepository(dbPool)
	profiles := repository.NewProfileRepository(dbPool)
	cases := repository.NewCaseRepository(dbPool)
	sessions := repository.NewSessionRepository(dbPool)
	sessionCache := cache.NewSessionCache(redisClient)
	producer := queue.NewProducer(redisClient, cfg.Worker.Stream)

	resolver := service.NewSessionResolver(sessions, sessionCache, cfg.Security.SessionSecret, logger)
	caseService := service.NewCaseService(cases, lawyers, profiles, objectStore, producer, cfg, logger)

	handlerSet := handlers.NewHandlerSet(logger, cfg, handlers.Dependencies{
		Auth:      service.NewAuthService(clients, lawyers, sessions, sessionCache, cfg, logger),
		Resolver:  resolver,
		Profiles:  service.NewProfileService(profiles, cfg, logger),
		Directory: service.NewDirectoryService(profiles, logger),
		Cases:     caseService,
		Dashboard: service.NewDashboardService(resolver, profiles, caseService, logger),
		HealthChecks: map[string]handlers.PingFunc{
			"database": dbPool.Ping,
			"cache":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
			"storage":  objectStore.Ping,
		},
	})
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(producer, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	db.Close()
	if err := redisClient.Close(); err != nil {
		logger.Error().Err(err).Msg("redis close error")
	}

	logger.Info().Msg("server exited cleanly")
}
