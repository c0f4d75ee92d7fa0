package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	v1 "mediakit/internal/contracts/jobs/v1"
	"mediakit/internal/httpkit"
	"mediakit/internal/models"
	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/worker/util"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type jobRequest interface {
	Validate() error
}

// JobAccepted is the 202 body of every job submission.
type JobAccepted struct {
	JobID  string           `json:"job_id"`
	ID     string           `json:"id,omitempty"`
	Status models.JobStatus `json:"status"`
}

func (h *Handler) PostCompose(w http.ResponseWriter, r *http.Request) error {
	var req v1.ComposeRequest
	return h.enqueue(w, r, models.KindCompose, &req, &req.Envelope)
}

func (h *Handler) PostCaption(w http.ResponseWriter, r *http.Request) error {
	var req v1.CaptionRequest
	return h.enqueue(w, r, models.KindCaption, &req, &req.Envelope)
}

func (h *Handler) PostMediaDownload(w http.ResponseWriter, r *http.Request) error {
	var req v1.DownloadRequest
	return h.enqueue(w, r, models.KindDownload, &req, &req.Envelope)
}

func (h *Handler) PostMediaTranscribe(w http.ResponseWriter, r *http.Request) error {
	var req v1.TranscribeRequest
	return h.enqueue(w, r, models.KindTranscribe, &req, &req.Envelope)
}

// enqueue validates the body into req, stores a QUEUED job holding it as
// params and pushes the job id. env must point into req.
func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, kind models.JobKind, req jobRequest, env *v1.Envelope) error {
	ctx := r.Context()

	if err := httpkit.DecodeJSON(w, r, req); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return err
	}

	params, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "api.enqueue", "failed to encode job params")
	}

	job := &models.Job{
		ID:         util.NewJobID(),
		Kind:       kind,
		ClientRef:  env.ID,
		Status:     models.StatusQueued,
		Params:     params,
		WebhookURL: env.WebhookURL,
	}
	ctx = logger.ContextWithJobID(ctx, job.ID)
	log := h.log.FromContext(ctx)

	if err := h.jobs.Create(ctx, job); err != nil {
		return errors.Wrap(err, "api.enqueue", "failed to create job")
	}

	if err := h.queue.Push(ctx, job.ID); err != nil {
		if markErr := h.jobs.MarkFailed(ctx, job.ID, "enqueue failed: "+err.Error()); markErr != nil {
			log.Error("failed to mark unqueued job as failed", "error", markErr)
		}
		return errors.WrapWithCode(err, errors.CodeUnavailable, "api.enqueue", "job queue unavailable")
	}

	log.Info("job queued", "kind", string(kind))
	httpkit.WriteJSON(w, http.StatusAccepted, JobAccepted{
		JobID:  job.ID,
		ID:     job.ClientRef,
		Status: job.Status,
	})
	return nil
}

// GetJob returns the job with its status, result and error.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) error {
	jobID := chi.URLParam(r, "jobId")

	job, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		return err
	}
	job.Params = nil

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"job": job})
	return nil
}

// ListJobs returns the most recent jobs, optionally filtered by ?status=.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	status := models.JobStatus(strings.ToUpper(strings.TrimSpace(q.Get("status"))))
	switch status {
	case "", models.StatusQueued, models.StatusRunning, models.StatusDone, models.StatusFailed:
	default:
		return errors.ValidationField("status", "status must be QUEUED, RUNNING, DONE or FAILED")
	}

	limit := defaultListLimit
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxListLimit {
			return errors.ValidationField("limit", "limit must be between 1 and 200")
		}
		limit = v
	}

	jobs, err := h.jobs.List(r.Context(), status, limit)
	if err != nil {
		return err
	}
	for i := range jobs {
		jobs[i].Params = nil
	}

	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
	return nil
}
