// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/taibuivan/librarium/internal/api"
	"github.com/taibuivan/librarium/internal/backup"
	"github.com/taibuivan/librarium/internal/catalog"
	"github.com/taibuivan/librarium/internal/lending"
	"github.com/taibuivan/librarium/internal/metadata"
	"github.com/taibuivan/librarium/internal/platform/constants"
	"github.com/taibuivan/librarium/internal/platform/database"
	redisstore "github.com/taibuivan/librarium/internal/platform/redis"
	"github.com/taibuivan/librarium/internal/platform/sec"
	"github.com/taibuivan/librarium/internal/platform/telemetry"
	"github.com/taibuivan/librarium/internal/readinglist"
	"github.com/taibuivan/librarium/internal/requestlog"
	"github.com/taibuivan/librarium/internal/stats"
	"github.com/taibuivan/librarium/internal/trash"
)

func newServeCommand(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return env.serve(cmd.Context())
		},
	}
}

func (env *environment) serve(parent context.Context) error {
	cfg, logger := env.cfg, env.logger
	logger.Info("service_initializing", slog.String("environment", cfg.Environment), slog.String("port", cfg.ServerPort))

	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// 1. Tracing
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("tracing_shutdown_failed", slog.Any("error", err))
		}
	}()

	// 2. Relational store + migrations
	db, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		logger.Info("closing_database")
		if err := db.Close(); err != nil {
			logger.Error("database_close_failed", slog.Any("error", err))
		}
	}()

	// 3. Redis is optional; lookups go uncached without it
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisstore.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			logger.Warn("redis_unavailable", slog.Any("error", err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					logger.Error("redis_close_failed", slog.Any("error", err))
				}
			}()
		}
	}

	// 4. Admin tokens
	tokens, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return err
	}
	if !tokens.CanVerify() {
		logger.Warn("admin_routes_unprotected")
	}

	// 5. Health probes
	dependencies := api.HealthDependencies{CheckDatabase: db.Ping}
	if redisClient != nil {
		dependencies.CheckCache = func(ctx context.Context) error {
			return redisstore.Ping(ctx, redisClient)
		}
	}
	liveness, readiness := api.NewHealthHandlers(dependencies, logger)

	// 6. Request log
	requestLogs := requestlog.NewSQLRepository(db)
	recorder := requestlog.NewRecorder(requestLogs, logger, constants.RequestLogQueueSize)
	defer recorder.Close()
	requestLogService := requestlog.NewService(requestLogs)

	// 7. Domain wiring
	reconciler := metadata.NewReconciler(logger,
		metadata.NewGoogleBooks(cfg.GoogleBooksAPIKey),
		metadata.NewOpenLibrary(),
	)
	var lookup metadata.Lookup = reconciler
	if redisClient != nil {
		lookup = metadata.NewCachedLookup(reconciler, metadata.NewRedisCache(redisClient), cfg.MetadataCacheTTL, logger)
	}

	catalogService := catalog.NewService(catalog.NewSQLRepository(db), logger)

	handlers := api.Handlers{
		Liveness:    liveness,
		Readiness:   readiness,
		Catalog:     catalog.NewHandler(catalogService, lookup),
		Trash:       trash.NewHandler(trash.NewService(trash.NewSQLRepository(db), logger)),
		Lending:     lending.NewHandler(lending.NewService(lending.NewSQLRepository(db), logger)),
		ReadingList: readinglist.NewHandler(readinglist.NewService(readinglist.NewSQLRepository(db), logger)),
		Metadata:    metadata.NewHandler(lookup, reconciler),
		Stats:       stats.NewHandler(stats.NewService(stats.NewSQLRepository(db), requestLogService)),
		RequestLog:  requestlog.NewHandler(requestLogService),
		Recorder:    recorder,
	}

	// 8. Backups read the SQLite file directly
	if cfg.UsesSQLite() {
		backupService, err := env.newBackupService(ctx, db)
		if err != nil {
			return err
		}
		scheduler := backup.NewScheduler(backupService, logger)
		scheduler.Start()
		defer scheduler.Stop()
		handlers.Backup = backup.NewHandler(backupService, scheduler)
	}

	// 9. HTTP server
	server := api.NewServer(ctx, cfg, logger, tokens, handlers)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_signal_received")
	case err := <-serverErr:
		logger.Error("server_failed", slog.Any("error", err))
		return err
	}

	logger.Info("shutting_down_server", slog.Duration("timeout", constants.ShutdownTimeout))
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return err
	}

	logger.Info("server_stopped_cleanly")
	return nil
}

// newBackupService wires the SQLite snapshotter and, when a bucket is
// configured, the S3 uploader.
func (env *environment) newBackupService(ctx context.Context, db *database.DB) (*backup.Service, error) {
	var uploader backup.Uploader
	if env.cfg.S3Bucket != "" {
		s3Uploader, err := backup.NewS3Uploader(ctx, backup.S3Options{
			Bucket:          env.cfg.S3Bucket,
			Region:          env.cfg.S3Region,
			Endpoint:        env.cfg.S3Endpoint,
			AccessKeyID:     env.cfg.S3AccessKeyID,
			SecretAccessKey: env.cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		uploader = s3Uploader
	}
	return backup.NewService(backup.NewSQLRepository(db), db, uploader, env.cfg.BackupDir, env.logger), nil
}
