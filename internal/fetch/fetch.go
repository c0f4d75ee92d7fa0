// Package fetch materializes remote inputs as files in the job temp directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
)

// Fetcher streams HTTP(S) URLs to local files.
type Fetcher struct {
	Client  *http.Client
	TempDir string
	Log     *logger.Logger
}

// New returns a Fetcher whose client gives up on a single download after timeout.
func New(tempDir string, timeout time.Duration, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: timeout},
		TempDir: tempDir,
		Log:     log,
	}
}

// InputPath is the local name of input index for jobID. The extension is taken
// from the URL path so ffmpeg's demuxer guess matches the source.
func (f *Fetcher) InputPath(jobID string, index int, rawURL string) string {
	return filepath.Join(f.TempDir, fmt.Sprintf("%s_input_%d%s", jobID, index, extensionOf(rawURL)))
}

// Download writes rawURL to InputPath and returns the path. Any failure is a
// DOWNLOAD_ERROR and leaves no partial file behind.
func (f *Fetcher) Download(ctx context.Context, jobID string, index int, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", errors.Download(rawURL, fmt.Errorf("unsupported url"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Download(rawURL, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", errors.Download(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Download(rawURL, fmt.Errorf("unexpected status %d", resp.StatusCode)).
			WithField("status", resp.StatusCode)
	}

	dest := f.InputPath(jobID, index, rawURL)
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", errors.Download(rawURL, err)
	}

	n, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(dest)
		return "", errors.Download(rawURL, copyErr)
	}

	f.Log.FromContext(ctx).WithComponent("fetch").Info("input downloaded",
		"index", index, "path", dest, "bytes", n)
	return dest, nil
}

func extensionOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if len(ext) < 2 || len(ext) > 6 {
		return ""
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return ""
		}
	}
	return ext
}
