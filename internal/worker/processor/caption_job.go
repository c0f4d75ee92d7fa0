package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"mediakit/internal/captions"
	"mediakit/internal/compose"
	v1 "mediakit/internal/contracts/jobs/v1"
	"mediakit/internal/pkg/errors"
)

const colorOption = "color"

// SubtitlesPath is where a caption job's ASS file is written.
func SubtitlesPath(tempDir, jobID string) string {
	return filepath.Join(tempDir, jobID+"_subtitles.ass")
}

// CaptionPlan turns a caption request into a single-input, single-output
// composition. assPath is empty when no subtitles are burned in. Repeated
// options keep their first position and take their last value.
func CaptionPlan(req *v1.CaptionRequest, assPath string) (compose.Request, error) {
	var opts []compose.Option
	if assPath != "" {
		opts = append(opts, compose.Arg("-vf", "subtitles="+escapeFilterValue(assPath)))
	}

	seen := make(map[string]int, len(req.Options))
	for _, o := range req.Options {
		value := o.Value.Value()
		if o.Option == colorOption {
			bgr, err := captions.RGBToBGR(value)
			if err != nil {
				return compose.Request{}, err
			}
			value = bgr
		}
		opt := compose.Arg("-"+o.Option, value)
		if i, ok := seen[o.Option]; ok {
			opts[i] = opt
			continue
		}
		seen[o.Option] = len(opts)
		opts = append(opts, opt)
	}

	return compose.Request{
		Inputs:  []compose.Input{{FileURL: req.VideoURL}},
		Outputs: []compose.Output{{Options: opts}},
	}, nil
}

func (p *Processor) runCaption(ctx context.Context, jobID string, req *v1.CaptionRequest) (any, error) {
	var ass, assPath string
	if strings.TrimSpace(req.SRTFile) != "" {
		var err error
		if ass, err = captions.SrtToASS(req.SRTFile); err != nil {
			return nil, err
		}
		assPath = SubtitlesPath(p.tempDir, jobID)
	}

	plan, err := CaptionPlan(req, assPath)
	if err != nil {
		return nil, err
	}

	if assPath != "" {
		if err := os.WriteFile(assPath, []byte(ass), 0o644); err != nil {
			p.cleanup.Sweep(ctx, jobID)
			return nil, errors.WrapWithCode(err, errors.CodeInternal, "processor.caption", "failed to write subtitles")
		}
	}

	files, err := p.engine.Compose(ctx, jobID, plan)
	if err != nil {
		return nil, err
	}
	return URLs(files)[0], nil
}

// escapeFilterValue escapes a path for use as a filter option value given to
// -vf. ffmpeg unescapes the value twice: once when splitting the filter graph
// and once when splitting the filter's options.
func escapeFilterValue(s string) string {
	return escapeRunes(escapeRunes(s, `\':=`), `\'[],;`)
}

func escapeRunes(s, special string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
