package worker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"mediakit/internal/pkg/logger"
)

const defaultPopTimeout = 5 * time.Second

// Run starts Concurrency independent pop/process loops and blocks until ctx
// is cancelled. Each loop handles one job at a time; a job already taken off
// the queue runs to completion after cancellation.
func Run(ctx context.Context, d Deps) error {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	log = log.WithComponent("worker")

	n := d.Concurrency
	if n < 1 {
		n = 1
	}
	timeout := d.PopTimeout
	if timeout <= 0 {
		timeout = defaultPopTimeout
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		loopLog := log.With("loop", i)
		g.Go(func() error {
			return loop(ctx, d, timeout, &logger.Logger{Logger: loopLog})
		})
	}
	log.Info("worker started", "concurrency", n)
	return g.Wait()
}

func loop(ctx context.Context, d Deps, timeout time.Duration, log *logger.Logger) error {
	for {
		select {
		case <-ctx.Done():
			log.Info("worker context canceled, stopping")
			return ctx.Err()
		default:
		}

		jobID, err := d.Queue.Pop(ctx, timeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("worker stopping due to context cancellation")
				return ctx.Err()
			}

			log.Warn("queue pop error, retrying",
				"error", err.Error(),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}

		if jobID == "" {
			continue
		}

		jobCtx := logger.ContextWithJobID(context.WithoutCancel(ctx), jobID)
		jobLog := log.FromContext(jobCtx)

		jobLog.Info("processing job")
		startTime := time.Now()

		if err := d.Processor.ProcessJob(jobCtx, jobID); err != nil {
			jobLog.Error("job failed",
				"error", err.Error(),
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		} else {
			jobLog.Info("job completed",
				"duration_ms", time.Since(startTime).Milliseconds(),
			)
		}
	}
}
