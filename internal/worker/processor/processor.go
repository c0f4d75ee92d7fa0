package processor

import (
	"context"
	"unicode/utf8"

	"mediakit/internal/compose"
	v1 "mediakit/internal/contracts/jobs/v1"
	"mediakit/internal/models"
	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/ports"
)

// maxErrorText bounds the error_text stored on a failed job.
const maxErrorText = 2000

// JobStore is the slice of the job repository the worker needs.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.Job, error)
	MarkRunning(ctx context.Context, id string) error
	MarkDone(ctx context.Context, id string, result any) error
	MarkFailed(ctx context.Context, id string, errText string) error
}

type Deps struct {
	Store   JobStore
	Storage ports.StorageProvider
	TempDir string

	FFmpegBinary string
	FFmpeg       Executor
	Extractor    *compose.Extractor
	Fetcher      InputFetcher
	Downloader   MediaDownloader
	Transcriber  Transcriber
	Notifier     *Notifier

	Log *logger.Logger
}

type Processor struct {
	store       JobStore
	tempDir     string
	downloader  MediaDownloader
	transcriber Transcriber
	notifier    *Notifier
	log         *logger.Logger

	engine  *Engine
	outputs *OutputHandler
	cleanup *Cleanup
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}

	extractor := d.Extractor
	if extractor == nil {
		extractor = &compose.Extractor{Log: log}
	}

	p := &Processor{
		store:       d.Store,
		tempDir:     d.TempDir,
		downloader:  d.Downloader,
		transcriber: d.Transcriber,
		notifier:    d.Notifier,
		log:         log.WithComponent("processor"),
	}

	p.outputs = NewOutputHandler(d.Storage, log)
	p.cleanup = NewCleanup(d.TempDir, log)
	p.engine = NewEngine(
		compose.NewComposer(d.FFmpegBinary, d.TempDir),
		d.FFmpeg,
		extractor,
		NewInputHandler(d.Fetcher, log),
		p.outputs,
		p.cleanup,
		log,
	)
	return p
}

// Engine exposes the composition pipeline.
func (p *Processor) Engine() *Engine { return p.engine }

// ProcessJob loads the job, runs it to a terminal state and notifies the
// webhook. Jobs already DONE or FAILED are skipped.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	ctx = withJobID(ctx, jobID)
	log := p.log.FromContext(ctx)

	job, err := p.store.Get(ctx, jobID)
	if err != nil {
		return errors.Wrap(err, "processor.fetch", "failed to load job")
	}
	if job.Status.Terminal() {
		log.Warn("job already finished, skipping", "status", string(job.Status))
		return nil
	}

	req, err := ParseParams(job)
	if err != nil {
		return p.failJob(ctx, job, err)
	}

	if err := p.store.MarkRunning(ctx, jobID); err != nil {
		return p.failJob(ctx, job, errors.Wrap(err, "processor.status", "failed to mark job as running"))
	}
	log.Info("job started", "kind", string(job.Kind))

	result, err := p.dispatch(ctx, jobID, req)
	if err != nil {
		return p.failJob(ctx, job, err)
	}

	if err := p.store.MarkDone(ctx, jobID, result); err != nil {
		return p.failJob(ctx, job, errors.Wrap(err, "processor.save", "failed to save job result"))
	}
	log.Info("job done", "kind", string(job.Kind))

	p.notifier.Notify(ctx, job.WebhookURL, WebhookPayload{
		JobID:    jobID,
		ID:       job.ClientRef,
		Status:   models.StatusDone,
		Response: result,
	})
	return nil
}

func (p *Processor) dispatch(ctx context.Context, jobID string, req JobRequest) (any, error) {
	switch r := req.(type) {
	case *v1.ComposeRequest:
		files, err := p.engine.Compose(ctx, jobID, r.Request)
		if err != nil {
			return nil, err
		}
		return ComposeResult{Outputs: files}, nil
	case *v1.CaptionRequest:
		return p.runCaption(ctx, jobID, r)
	case *v1.DownloadRequest:
		return p.runDownload(ctx, jobID, r)
	case *v1.TranscribeRequest:
		return p.runTranscribe(ctx, jobID, r)
	default:
		return nil, errors.Newf(errors.CodeInternal, "unsupported request %T", req)
	}
}

// ComposeResult is the stored response of a compose job.
type ComposeResult struct {
	Outputs []OutputFile `json:"outputs"`
}

func (p *Processor) failJob(ctx context.Context, job *models.Job, cause error) error {
	log := p.log.FromContext(ctx)

	msg := truncate(cause.Error(), maxErrorText)

	var jobErr *errors.Error
	if errors.As(cause, &jobErr) {
		log.Error("job failed",
			"code", string(jobErr.Code),
			"op", jobErr.Op,
			"message", jobErr.Message,
			"error", msg,
		)
	} else {
		log.Error("job failed", "error", msg)
	}

	if err := p.store.MarkFailed(ctx, job.ID, msg); err != nil {
		log.Error("failed to mark job as failed", "error", err)
	}

	p.notifier.Notify(ctx, job.WebhookURL, WebhookPayload{
		JobID:  job.ID,
		ID:     job.ClientRef,
		Status: models.StatusFailed,
		Error:  msg,
	})
	return cause
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	s = s[:n]
	for len(s) > 0 && !utf8.ValidString(s) {
		s = s[:len(s)-1]
	}
	return s
}
