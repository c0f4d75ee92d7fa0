package compose

import (
	"context"
	"os"

	"mediakit/internal/media/ffprobe"
	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
)

// Metadata holds the requested per-artifact fields. A nil field was either not
// requested or could not be determined.
type Metadata struct {
	Filesize *int64   `json:"filesize,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Bitrate  *int64   `json:"bitrate,omitempty"`
}

// ProbeFunc reports structured metadata for a media file.
type ProbeFunc func(ctx context.Context, path string) (ffprobe.Result, error)

// Extractor fills Metadata for resolved artifacts.
type Extractor struct {
	Probe ProbeFunc
	Log   *logger.Logger
}

// NewExtractor returns an Extractor that probes with the given ffprobe binary.
func NewExtractor(ffprobeBinary string, log *logger.Logger) *Extractor {
	return &Extractor{
		Probe: func(ctx context.Context, path string) (ffprobe.Result, error) {
			return ffprobe.Inspect(ctx, ffprobeBinary, path)
		},
		Log: log,
	}
}

// Extract returns only the requested fields for path. It never fails: a field
// that cannot be determined is logged as METADATA_UNAVAILABLE and left nil.
// Duration and bitrate share a single probe invocation.
func (e *Extractor) Extract(ctx context.Context, path string, req MetadataRequest) Metadata {
	var md Metadata

	if req.Filesize {
		if st, err := os.Stat(path); err == nil {
			size := st.Size()
			md.Filesize = &size
		} else {
			e.unavailable(ctx, path, "filesize", err)
		}
	}

	if !req.Duration && !req.Bitrate {
		return md
	}

	if e.Probe == nil {
		e.unavailable(ctx, path, "probe", errors.New(errors.CodeMetadataUnavailable, "no probe configured"))
		return md
	}
	report, err := e.Probe(ctx, path)
	if err != nil {
		e.unavailable(ctx, path, "probe", err)
		return md
	}

	if req.Duration {
		if d, ok := report.DurationSeconds(); ok {
			md.Duration = &d
		} else {
			e.unavailable(ctx, path, "duration", nil)
		}
	}
	if req.Bitrate {
		if b, ok := report.BitRate(); ok {
			md.Bitrate = &b
		} else {
			e.unavailable(ctx, path, "bitrate", nil)
		}
	}
	return md
}

// Annotate extracts metadata for every artifact when any field is requested.
func (e *Extractor) Annotate(ctx context.Context, artifacts []Artifact, req MetadataRequest) {
	if !req.Any() {
		return
	}
	for i := range artifacts {
		md := e.Extract(ctx, artifacts[i].LocalPath, req)
		artifacts[i].Metadata = &md
	}
}

func (e *Extractor) unavailable(ctx context.Context, path, field string, cause error) {
	if e.Log == nil {
		return
	}
	args := []any{
		"code", string(errors.CodeMetadataUnavailable),
		"path", path,
		"field", field,
	}
	if cause != nil {
		args = append(args, "error", cause.Error())
	}
	e.Log.FromContext(ctx).Warn("metadata unavailable", args...)
}
