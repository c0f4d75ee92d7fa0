package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mediakit/internal/pkg/errors"
)

func TestDownloadWritesPrefixedFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "media-bytes")
	}))
	defer srv.Close()

	dir := t.TempDir()
	f := New(dir, 5*time.Second, nil)

	path, err := f.Download(context.Background(), "job1", 2, srv.URL+"/clips/intro.MP4?sig=abc")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if want := filepath.Join(dir, "job1_input_2.mp4"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "media-bytes" {
		t.Fatalf("content = %q, %v", data, err)
	}
}

func TestDownloadNon2xxIsDownloadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := New(dir, time.Second, nil).Download(context.Background(), "job1", 0, srv.URL+"/a.mp4")
	if !errors.IsCode(err, errors.CodeDownload) {
		t.Fatalf("expected DOWNLOAD_ERROR, got %v", err)
	}
	if got := errors.GetFields(err)["status"]; got != http.StatusNotFound {
		t.Errorf("status field = %v", got)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("temp dir not empty: %v", entries)
	}
}

func TestDownloadRejectsNonHTTP(t *testing.T) {
	for _, u := range []string{"file:///etc/passwd", "not a url", "ftp://host/a.mp4"} {
		_, err := New(t.TempDir(), time.Second, nil).Download(context.Background(), "j", 0, u)
		if !errors.IsCode(err, errors.CodeDownload) {
			t.Errorf("%s: expected DOWNLOAD_ERROR, got %v", u, err)
		}
	}
}

func TestDownloadTruncatedBodyRemovesPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100")
		_, _ = io.WriteString(w, "short")
	}))
	defer srv.Close()

	dir := t.TempDir()
	_, err := New(dir, time.Second, nil).Download(context.Background(), "j", 0, srv.URL+"/a.wav")
	if !errors.IsCode(err, errors.CodeDownload) {
		t.Fatalf("expected DOWNLOAD_ERROR, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "j_input_0.wav")); !os.IsNotExist(statErr) {
		t.Errorf("partial file left behind")
	}
}

func TestExtensionOf(t *testing.T) {
	tests := map[string]string{
		"https://x/a.mp4":              ".mp4",
		"https://x/a.JPEG?x=1":         ".jpeg",
		"https://x/download":           "",
		"https://x/a.tar.gz":           ".gz",
		"https://x/a.reallylongext":    "",
		"https://x/a.m%20p":            "",
		"https://x/dir.with.dots/file": "",
	}
	for in, want := range tests {
		if got := extensionOf(in); got != want {
			t.Errorf("extensionOf(%q) = %q, want %q", in, got, want)
		}
	}
}
