package compose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"mediakit/internal/media/ffprobe"
	"mediakit/internal/pkg/logger"
)

func stubProbe(calls *int, result ffprobe.Result, err error) ProbeFunc {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		*calls++
		return result, err
	}
}

func writeSized(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "j_output_0.mp4")
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExtractFilesizeOnlySkipsProbe(t *testing.T) {
	path := writeSized(t, 2048)
	calls := 0
	e := &Extractor{Probe: stubProbe(&calls, ffprobe.Result{}, nil), Log: logger.NewDiscard()}

	md := e.Extract(context.Background(), path, MetadataRequest{Filesize: true})

	if md.Filesize == nil || *md.Filesize != 2048 {
		t.Fatalf("filesize = %v, want 2048", md.Filesize)
	}
	if md.Duration != nil || md.Bitrate != nil {
		t.Error("unrequested fields must stay nil")
	}
	if calls != 0 {
		t.Errorf("probe called %d times, want 0", calls)
	}
}

func TestExtractDurationAndBitrateShareOneProbe(t *testing.T) {
	path := writeSized(t, 1)
	calls := 0
	report := ffprobe.Result{Format: ffprobe.Format{Duration: "3.5", BitRate: "128000"}}
	e := &Extractor{Probe: stubProbe(&calls, report, nil), Log: logger.NewDiscard()}

	md := e.Extract(context.Background(), path, MetadataRequest{Duration: true, Bitrate: true})

	if calls != 1 {
		t.Errorf("probe called %d times, want 1", calls)
	}
	if md.Duration == nil || *md.Duration != 3.5 {
		t.Errorf("duration = %v", md.Duration)
	}
	if md.Bitrate == nil || *md.Bitrate != 128000 {
		t.Errorf("bitrate = %v", md.Bitrate)
	}
	if md.Filesize != nil {
		t.Error("filesize not requested")
	}
}

func TestExtractProbeFailureIsNonFatal(t *testing.T) {
	path := writeSized(t, 10)
	calls := 0
	e := &Extractor{Probe: stubProbe(&calls, ffprobe.Result{}, fmt.Errorf("probe exploded")), Log: logger.NewDiscard()}

	md := e.Extract(context.Background(), path, MetadataRequest{Filesize: true, Duration: true, Bitrate: true})

	if md.Filesize == nil || *md.Filesize != 10 {
		t.Errorf("filesize should survive a probe failure, got %v", md.Filesize)
	}
	if md.Duration != nil || md.Bitrate != nil {
		t.Error("probe fields must be unavailable")
	}
}

func TestExtractAbsentFieldIsUnavailable(t *testing.T) {
	path := writeSized(t, 1)
	calls := 0
	// still images report no duration
	report := ffprobe.Result{Format: ffprobe.Format{BitRate: "9000"}}
	e := &Extractor{Probe: stubProbe(&calls, report, nil)}

	md := e.Extract(context.Background(), path, MetadataRequest{Duration: true, Bitrate: true})

	if md.Duration != nil {
		t.Errorf("duration = %v, want nil", *md.Duration)
	}
	if md.Bitrate == nil || *md.Bitrate != 9000 {
		t.Errorf("bitrate = %v", md.Bitrate)
	}
}

func TestAnnotateOnlyWhenRequested(t *testing.T) {
	path := writeSized(t, 4)
	calls := 0
	e := &Extractor{Probe: stubProbe(&calls, ffprobe.Result{}, nil), Log: logger.NewDiscard()}
	artifacts := []Artifact{{LocalPath: path}}

	e.Annotate(context.Background(), artifacts, MetadataRequest{})
	if artifacts[0].Metadata != nil {
		t.Fatal("metadata attached without a request")
	}

	e.Annotate(context.Background(), artifacts, MetadataRequest{Filesize: true})
	if artifacts[0].Metadata == nil || *artifacts[0].Metadata.Filesize != 4 {
		t.Fatalf("unexpected metadata %+v", artifacts[0].Metadata)
	}
}
