package models

import (
	"encoding/json"
	"time"
)

type JobKind string

const (
	KindCompose    JobKind = "compose"
	KindCaption    JobKind = "caption"
	KindDownload   JobKind = "download"
	KindTranscribe JobKind = "transcribe"
)

type JobStatus string

const (
	StatusQueued  JobStatus = "QUEUED"
	StatusRunning JobStatus = "RUNNING"
	StatusDone    JobStatus = "DONE"
	StatusFailed  JobStatus = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s JobStatus) Terminal() bool {
	return s == StatusDone || s == StatusFailed
}

type Job struct {
	ID         string          `json:"job_id"`
	Kind       JobKind         `json:"kind"`
	ClientRef  string          `json:"id,omitempty"`
	Status     JobStatus       `json:"status"`
	Params     json.RawMessage `json:"params,omitempty"`
	Result     json.RawMessage `json:"response,omitempty"`
	ErrorText  string          `json:"error,omitempty"`
	WebhookURL string          `json:"webhook_url,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	StartedAt  *time.Time      `json:"started_at,omitempty"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
