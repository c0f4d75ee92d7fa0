package processor

import (
	"context"
	"path/filepath"

	v1 "mediakit/internal/contracts/jobs/v1"
	"mediakit/internal/media/whisper"
)

// Transcriber turns an audio file into text, SRT and timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outDir string, opts whisper.Options) (whisper.Transcript, error)
}

// TranscribeResult holds inline content for direct responses and URLs for
// cloud responses. Parts that were not requested are null.
type TranscribeResult struct {
	Text     any `json:"text"`
	SRT      any `json:"srt"`
	Segments any `json:"segments"`
}

func (p *Processor) runTranscribe(ctx context.Context, jobID string, req *v1.TranscribeRequest) (any, error) {
	defer p.cleanup.Sweep(ctx, jobID)
	log := p.log.FromContext(ctx)

	log.Info("extracting audio", "url", req.MediaURL)
	audio, err := p.downloader.Audio(ctx, req.MediaURL, filepath.Join(p.tempDir, jobID+"_audio"))
	if err != nil {
		return nil, err
	}

	tr, err := p.transcriber.Transcribe(ctx, audio, p.tempDir, whisper.Options{
		Task:           req.Task,
		Language:       req.Language,
		WordTimestamps: req.WantWordTimes(),
	})
	if err != nil {
		return nil, err
	}
	log.Info("transcription finished", "segments", len(tr.Segments), "response_type", req.Response())

	var res TranscribeResult
	if req.Response() == v1.ResponseDirect {
		if req.WantText() {
			res.Text = tr.Text
		}
		if req.WantSRT() {
			res.SRT = tr.SRT
		}
		if req.WantSegments() {
			segments := tr.Segments
			if segments == nil {
				segments = []whisper.Segment{}
			}
			res.Segments = segments
		}
		return res, nil
	}

	var paths []string
	var slots []*any
	if req.WantText() {
		paths, slots = append(paths, tr.TextPath), append(slots, &res.Text)
	}
	if req.WantSRT() {
		paths, slots = append(paths, tr.SRTPath), append(slots, &res.SRT)
	}
	if req.WantSegments() {
		paths, slots = append(paths, tr.SegmentsPath), append(slots, &res.Segments)
	}

	urls, err := p.outputs.UploadFiles(ctx, jobID, paths)
	if err != nil {
		return nil, err
	}
	for i, u := range urls {
		*slots[i] = u
	}
	return res, nil
}
