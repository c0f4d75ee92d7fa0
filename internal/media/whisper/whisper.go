// Package whisper transcribes audio files with the openai-whisper command line tool.
package whisper

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mediakit/internal/media/runner"
	"mediakit/internal/pkg/errors"
)

// Tasks accepted by whisper.
const (
	TaskTranscribe = "transcribe"
	TaskTranslate  = "translate"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "base"

// Options control one transcription run.
type Options struct {
	Task           string
	Language       string
	WordTimestamps bool
}

// Segment is one timed span of the transcript.
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

// Word is a single word with timing, present when word timestamps are enabled.
type Word struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}

// Transcript holds the decoded outputs and the paths whisper wrote them to.
type Transcript struct {
	Text     string
	SRT      string
	Segments []Segment

	TextPath     string
	SRTPath      string
	SegmentsPath string
}

// Transcriber runs whisper with a fixed model.
type Transcriber struct {
	Run   *runner.Runner
	Model string
}

// New returns a Transcriber. An empty model means DefaultModel.
func New(r *runner.Runner, model string) *Transcriber {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Transcriber{Run: r, Model: model}
}

// Args builds the whisper argument vector. Outputs land in outDir named after
// the audio file's base name.
func (t *Transcriber) Args(audioPath, outDir string, opts Options) []string {
	task := opts.Task
	if task == "" {
		task = TaskTranscribe
	}
	args := []string{
		audioPath,
		"--model", t.Model,
		"--task", task,
		"--output_dir", outDir,
		"--output_format", "all",
		"--verbose", "False",
	}
	if opts.Language != "" {
		args = append(args, "--language", opts.Language)
	}
	if opts.WordTimestamps {
		args = append(args, "--word_timestamps", "True")
	}
	return args
}

// Transcribe runs whisper on audioPath and reads back its txt, srt and json outputs.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, outDir string, opts Options) (Transcript, error) {
	if _, err := t.Run.Run(ctx, t.Args(audioPath, outDir, opts)...); err != nil {
		return Transcript{}, errors.Wrap(err, "whisper.transcribe", "whisper failed")
	}

	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	tr := Transcript{
		TextPath:     filepath.Join(outDir, stem+".txt"),
		SRTPath:      filepath.Join(outDir, stem+".srt"),
		SegmentsPath: filepath.Join(outDir, stem+".json"),
	}

	text, err := os.ReadFile(tr.TextPath)
	if err != nil {
		return tr, errors.OutputNotFound(tr.TextPath)
	}
	srt, err := os.ReadFile(tr.SRTPath)
	if err != nil {
		return tr, errors.OutputNotFound(tr.SRTPath)
	}
	raw, err := os.ReadFile(tr.SegmentsPath)
	if err != nil {
		return tr, errors.OutputNotFound(tr.SegmentsPath)
	}

	var report struct {
		Segments []Segment `json:"segments"`
	}
	if err := json.Unmarshal(raw, &report); err != nil {
		return tr, errors.WrapWithCode(err, errors.CodeProcessExecution, "whisper.transcribe",
			fmt.Sprintf("unreadable segments file %s", tr.SegmentsPath))
	}

	tr.Text = strings.TrimSpace(string(text))
	tr.SRT = string(srt)
	tr.Segments = report.Segments
	return tr, nil
}
