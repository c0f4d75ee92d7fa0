package processor

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	v1 "mediakit/internal/contracts/jobs/v1"
	"mediakit/internal/pkg/errors"
)

// MediaDownloader fetches media pages (not just direct file links) with yt-dlp.
type MediaDownloader interface {
	Video(ctx context.Context, url, dest string) error
	Audio(ctx context.Context, url, destNoExt string) (string, error)
}

// DownloadResult is the stored response of a download job.
type DownloadResult struct {
	Message           string   `json:"message"`
	UploadedAudioURLs []string `json:"uploaded_audio_urls"`
	UploadedVideoURLs []string `json:"uploaded_video_urls"`
}

func (p *Processor) runDownload(ctx context.Context, jobID string, req *v1.DownloadRequest) (any, error) {
	defer p.cleanup.Sweep(ctx, jobID)
	log := p.log.FromContext(ctx)

	var local []string
	for i, data := range req.AudioDataList {
		audio, err := decodeAudio(data)
		if err != nil {
			return nil, errors.ValidationField(fmt.Sprintf("audio_data_list[%d]", i), "invalid base64 audio data")
		}
		path := filepath.Join(p.tempDir, fmt.Sprintf("%s_audio_%d.mp3", jobID, i))
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInternal, "processor.download", "failed to write audio")
		}
		log.Debug("audio decoded", "index", i, "path", path, "bytes", len(audio))
		local = append(local, path)
	}
	audioCount := len(local)

	for i, url := range req.MediaURLList {
		path := filepath.Join(p.tempDir, fmt.Sprintf("%s_video_%d.mp4", jobID, i))
		log.Info("downloading media", "index", i, "url", url)
		if err := p.downloader.Video(ctx, url, path); err != nil {
			return nil, err
		}
		local = append(local, path)
	}

	urls, err := p.outputs.UploadFiles(ctx, jobID, local)
	if err != nil {
		return nil, err
	}
	return DownloadResult{
		Message:           "Media files processed successfully.",
		UploadedAudioURLs: append([]string{}, urls[:audioCount]...),
		UploadedVideoURLs: append([]string{}, urls[audioCount:]...),
	}, nil
}

// decodeAudio accepts padded or unpadded base64 and ignores embedded whitespace.
func decodeAudio(data string) ([]byte, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, data)
	if clean == "" {
		return nil, fmt.Errorf("empty audio data")
	}
	if b, err := base64.StdEncoding.DecodeString(clean); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(clean)
}
