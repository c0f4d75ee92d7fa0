package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"mediakit/internal/config"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/pkg/shutdown"
	"mediakit/internal/repositories"
	"mediakit/internal/storage"
	"mediakit/internal/worker"
	"mediakit/internal/worker/queue"
)

func main() {
	logCfg := logger.DefaultConfig()
	logCfg.ServiceName = "mediakit-worker"
	log := logger.New(logCfg)

	cfg, err := config.Load()
	if err != nil {
		log.LogFatal("invalid configuration", err)
	}

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		log.LogFatal("failed to create temp dir", err, "temp_dir", cfg.TempDir)
	}

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 2*time.Minute)

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.RegisterSimple("postgres", pool.Close)
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}

	jobs := repositories.NewJobRepository(pool)
	if err := jobs.Migrate(ctx); err != nil {
		log.LogFatal("failed to migrate jobs table", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	sp, err := storage.NewProvider(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize storage provider", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	stopped := make(chan error, 1)
	go func() {
		stopped <- worker.Run(runCtx, worker.Deps{
			Queue:       queue.NewRedisQueue(rdb, cfg.QueueName),
			Processor:   worker.NewProcessor(cfg, jobs, sp, log),
			Concurrency: cfg.WorkerConcurrency,
			Log:         log,
		})
	}()

	shutdownMgr.Register("worker", func(ctx context.Context) error {
		cancel()
		select {
		case err := <-stopped:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	log.Info("mediakit worker started",
		"queue", cfg.QueueName,
		"concurrency", cfg.WorkerConcurrency,
		"storage", sp.Provider(),
		"temp_dir", cfg.TempDir,
	)
	shutdownMgr.Wait()
}
