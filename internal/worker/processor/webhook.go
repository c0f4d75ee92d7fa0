package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mediakit/internal/models"
	"mediakit/internal/pkg/logger"
)

// WebhookPayload is posted to a job's webhook_url once it reaches a terminal state.
type WebhookPayload struct {
	JobID    string           `json:"job_id"`
	ID       string           `json:"id,omitempty"`
	Status   models.JobStatus `json:"status"`
	Response any              `json:"response,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// Notifier delivers webhook callbacks. Delivery is best effort: failures are
// logged and never affect the job.
type Notifier struct {
	client *http.Client
	log    *logger.Logger
}

func NewNotifier(timeout time.Duration, log *logger.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Notifier{
		client: &http.Client{Timeout: timeout},
		log:    log.WithComponent("webhook"),
	}
}

// Notify posts payload to url. An empty url is a no-op.
func (n *Notifier) Notify(ctx context.Context, url string, payload WebhookPayload) {
	if n == nil || url == "" {
		return
	}
	log := n.log.FromContext(ctx)

	if err := n.post(ctx, url, payload); err != nil {
		log.Warn("webhook delivery failed", "url", url, "error", err)
		return
	}
	log.Info("webhook delivered", "url", url, "status", string(payload.Status))
}

func (n *Notifier) post(ctx context.Context, url string, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "mediakit/1.0")

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("webhook http %d", res.StatusCode)
	}
	return nil
}
