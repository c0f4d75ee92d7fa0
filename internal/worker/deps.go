package worker

import (
	"context"
	"time"

	"mediakit/internal/compose"
	"mediakit/internal/config"
	"mediakit/internal/fetch"
	"mediakit/internal/media/runner"
	"mediakit/internal/media/whisper"
	"mediakit/internal/media/ytdlp"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/ports"
	"mediakit/internal/worker/processor"
)

// JobQueue is the consuming side of the job queue.
type JobQueue interface {
	Pop(ctx context.Context, timeout time.Duration) (string, error)
}

// JobProcessor runs one job to a terminal state.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

type Deps struct {
	Queue       JobQueue
	Processor   JobProcessor
	Concurrency int
	PopTimeout  time.Duration
	Log         *logger.Logger
}

// NewProcessor wires the external tools, the fetcher and storage from cfg.
func NewProcessor(cfg config.Config, store processor.JobStore, sp ports.StorageProvider, log *logger.Logger) *processor.Processor {
	return processor.New(processor.Deps{
		Store:        store,
		Storage:      sp,
		TempDir:      cfg.TempDir,
		FFmpegBinary: cfg.Tools.FFmpeg,
		FFmpeg:       runner.New(cfg.Tools.FFmpeg, log),
		Extractor:    compose.NewExtractor(cfg.Tools.FFprobe, log.WithComponent("metadata")),
		Fetcher:      fetch.New(cfg.TempDir, cfg.DownloadTimeout, log),
		Downloader:   ytdlp.New(runner.New(cfg.Tools.YtDlp, log)),
		Transcriber:  whisper.New(runner.New(cfg.Tools.Whisper, log), cfg.Tools.WhisperModel),
		Notifier:     processor.NewNotifier(30*time.Second, log),
		Log:          log,
	})
}
