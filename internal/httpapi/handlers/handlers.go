package handlers

import (
	"context"

	"mediakit/internal/models"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/ports"
)

// JobStore is the slice of the job repository the API needs.
type JobStore interface {
	Create(ctx context.Context, j *models.Job) error
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, status models.JobStatus, limit int) ([]models.Job, error)
	MarkFailed(ctx context.Context, id string, errText string) error
}

// JobQueue is the producing side of the job queue.
type JobQueue interface {
	Push(ctx context.Context, jobID string) error
	Ping(ctx context.Context) error
	Len(ctx context.Context) (int64, error)
}

// Pinger checks a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Jobs  JobStore
	Queue JobQueue
	DB    Pinger
	SP    ports.StorageProvider
	Log   *logger.Logger
}

type Handler struct {
	jobs  JobStore
	queue JobQueue
	db    Pinger
	sp    ports.StorageProvider
	log   *logger.Logger
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{
		jobs:  d.Jobs,
		queue: d.Queue,
		db:    d.DB,
		sp:    d.SP,
		log:   log.WithComponent("api"),
	}
}
