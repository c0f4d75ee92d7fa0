package processor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"mediakit/internal/compose"
	"mediakit/internal/media/runner"
	"mediakit/internal/media/whisper"
	"mediakit/internal/models"
	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
	"mediakit/internal/ports"
)

type fakeFetcher struct {
	dir    string
	failAt int
	calls  int
}

func (f *fakeFetcher) Download(_ context.Context, jobID string, index int, rawURL string) (string, error) {
	f.calls++
	if index == f.failAt {
		return "", errors.Download(rawURL, fmt.Errorf("connection refused"))
	}
	p := filepath.Join(f.dir, fmt.Sprintf("%s_input_%d.mp4", jobID, index))
	if err := os.WriteFile(p, []byte("input"), 0o644); err != nil {
		return "", err
	}
	return p, nil
}

type fakeExec struct {
	calls   [][]string
	produce func(args []string) error
}

func (f *fakeExec) Run(_ context.Context, args ...string) (runner.Result, error) {
	f.calls = append(f.calls, args)
	if f.produce != nil {
		if err := f.produce(args); err != nil {
			return runner.Result{}, err
		}
	}
	return runner.Result{}, nil
}

// writeLast creates the file named by the final argument.
func writeLast(args []string) error {
	return os.WriteFile(args[len(args)-1], []byte("output"), 0o644)
}

// writeSequence expands the final argument's %03d pattern n times.
func writeSequence(n int) func(args []string) error {
	return func(args []string) error {
		pattern := args[len(args)-1]
		for i := 1; i <= n; i++ {
			if err := os.WriteFile(fmt.Sprintf(pattern, i), []byte("frame"), 0o644); err != nil {
				return err
			}
		}
		return nil
	}
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	puts    int
	failOn  int // 1-based put attempt that fails; 0 never fails
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Provider() string { return "fake" }

func (s *fakeStorage) PutObject(_ context.Context, in ports.PutObjectInput) (ports.PutObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.puts == s.failOn {
		return ports.PutObjectOutput{}, fmt.Errorf("bucket unavailable")
	}
	b, err := io.ReadAll(in.Reader)
	if err != nil {
		return ports.PutObjectOutput{}, err
	}
	s.objects[in.ObjectKey] = b
	return ports.PutObjectOutput{ObjectKey: in.ObjectKey, URL: "https://cdn.test/" + in.ObjectKey, Size: int64(len(b))}, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) Ping(context.Context) error { return nil }

func (s *fakeStorage) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type fakeDownloader struct {
	videoErr error
	audioErr error
	videos   []string
}

func (d *fakeDownloader) Video(_ context.Context, url, dest string) error {
	if d.videoErr != nil {
		return d.videoErr
	}
	d.videos = append(d.videos, url)
	return os.WriteFile(dest, []byte("video:"+url), 0o644)
}

func (d *fakeDownloader) Audio(_ context.Context, url, destNoExt string) (string, error) {
	if d.audioErr != nil {
		return "", d.audioErr
	}
	path := destNoExt + ".flac"
	return path, os.WriteFile(path, []byte("flac"), 0o644)
}

type fakeTranscriber struct {
	opts whisper.Options
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audioPath, outDir string, opts whisper.Options) (whisper.Transcript, error) {
	f.opts = opts
	stem := filepath.Base(audioPath[:len(audioPath)-len(filepath.Ext(audioPath))])
	tr := whisper.Transcript{
		Text:         "hello world",
		SRT:          "1\n00:00:00,000 --> 00:00:01,000\nhello world\n",
		Segments:     []whisper.Segment{{ID: 0, Start: 0, End: 1, Text: " hello world"}},
		TextPath:     filepath.Join(outDir, stem+".txt"),
		SRTPath:      filepath.Join(outDir, stem+".srt"),
		SegmentsPath: filepath.Join(outDir, stem+".json"),
	}
	for _, p := range []string{tr.TextPath, tr.SRTPath, tr.SegmentsPath} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			return whisper.Transcript{}, err
		}
	}
	return tr, nil
}

type fakeStore struct {
	mu   sync.Mutex
	jobs map[string]*models.Job
	done map[string]any
}

func newFakeStore(jobs ...*models.Job) *fakeStore {
	s := &fakeStore{jobs: map[string]*models.Job{}, done: map[string]any{}}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *fakeStore) Get(_ context.Context, id string) (*models.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return nil, errors.NotFound("job", id)
	}
	cp := *j
	return &cp, nil
}

func (s *fakeStore) MarkRunning(_ context.Context, id string) error {
	return s.set(id, func(j *models.Job) { j.Status = models.StatusRunning })
}

func (s *fakeStore) MarkDone(_ context.Context, id string, result any) error {
	s.mu.Lock()
	s.done[id] = result
	s.mu.Unlock()
	return s.set(id, func(j *models.Job) { j.Status = models.StatusDone })
}

func (s *fakeStore) MarkFailed(_ context.Context, id string, errText string) error {
	return s.set(id, func(j *models.Job) {
		j.Status = models.StatusFailed
		j.ErrorText = errText
	})
}

func (s *fakeStore) set(id string, fn func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return errors.NotFound("job", id)
	}
	fn(j)
	return nil
}

type harness struct {
	dir        string
	fetcher    *fakeFetcher
	exec       *fakeExec
	storage    *fakeStorage
	downloader *fakeDownloader
	whisper    *fakeTranscriber
	store      *fakeStore
	proc       *Processor
}

func newHarness(t *testing.T, jobs ...*models.Job) *harness {
	t.Helper()
	dir := t.TempDir()
	h := &harness{
		dir:        dir,
		fetcher:    &fakeFetcher{dir: dir, failAt: -1},
		exec:       &fakeExec{produce: writeLast},
		storage:    newFakeStorage(),
		downloader: &fakeDownloader{},
		whisper:    &fakeTranscriber{},
		store:      newFakeStore(jobs...),
	}
	h.proc = New(Deps{
		Store:        h.store,
		Storage:      h.storage,
		TempDir:      dir,
		FFmpegBinary: "ffmpeg",
		FFmpeg:       h.exec,
		Fetcher:      h.fetcher,
		Downloader:   h.downloader,
		Transcriber:  h.whisper,
		Extractor:    &compose.Extractor{},
		Log:          logger.NewDiscard(),
	})
	return h
}

func (h *harness) engine() *Engine { return h.proc.Engine() }

// assertTempEmpty fails when anything is left in the temp dir.
func (h *harness) assertTempEmpty(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.dir)
	if err != nil {
		t.Fatalf("read temp dir: %v", err)
	}
	if len(entries) != 0 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("temp dir not empty: %v", names)
	}
}
