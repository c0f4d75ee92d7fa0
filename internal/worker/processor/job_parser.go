package processor

import (
	"bytes"
	"encoding/json"
	"fmt"

	v1 "mediakit/internal/contracts/jobs/v1"
	"mediakit/internal/models"
	"mediakit/internal/pkg/errors"
)

// JobRequest is any decoded request body.
type JobRequest interface {
	Validate() error
}

// ParseParams decodes a stored job's params into the request type of its kind
// and validates the result.
func ParseParams(job *models.Job) (JobRequest, error) {
	var req JobRequest
	switch job.Kind {
	case models.KindCompose:
		req = &v1.ComposeRequest{}
	case models.KindCaption:
		req = &v1.CaptionRequest{}
	case models.KindDownload:
		req = &v1.DownloadRequest{}
	case models.KindTranscribe:
		req = &v1.TranscribeRequest{}
	default:
		return nil, errors.Validation(fmt.Sprintf("unknown job kind %q", job.Kind)).WithField("kind", string(job.Kind))
	}

	dec := json.NewDecoder(bytes.NewReader(job.Params))
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "processor.parse", "invalid job params")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}
