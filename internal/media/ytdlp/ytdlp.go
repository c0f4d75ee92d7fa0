// Package ytdlp downloads remote media with the yt-dlp command line tool.
package ytdlp

import (
	"context"
	"os"

	"mediakit/internal/media/runner"
	"mediakit/internal/pkg/errors"
)

const (
	flagOutput       = "-o"
	flagFormat       = "-f"
	flagRemux        = "--remux-video"
	flagExtractAudio = "-x"
	flagAudioFormat  = "--audio-format"
	flagAudioQuality = "--audio-quality"
	flagNoPlaylist   = "--no-playlist"
	flagNoProgress   = "--no-progress"
	flagEndOfOptions = "--"

	// VideoFormat prefers separate mp4/m4a streams and falls back to a muxed mp4.
	VideoFormat = "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4"
	// AudioFormat selects the best audio-only stream.
	AudioFormat = "bestaudio/best"
)

// Downloader wraps a yt-dlp runner.
type Downloader struct {
	Run *runner.Runner
}

// New returns a Downloader using r.
func New(r *runner.Runner) *Downloader {
	return &Downloader{Run: r}
}

// VideoArgs builds the argument vector for an mp4 download written to dest.
func VideoArgs(url, dest string) []string {
	return []string{
		flagNoPlaylist, flagNoProgress,
		flagFormat, VideoFormat,
		flagRemux, "mp4",
		flagOutput, dest,
		flagEndOfOptions, url,
	}
}

// AudioArgs builds the argument vector for a lossless FLAC extraction. yt-dlp
// appends the extension itself, so destNoExt must not carry one.
func AudioArgs(url, destNoExt string) []string {
	return []string{
		flagNoPlaylist, flagNoProgress,
		flagFormat, AudioFormat,
		flagExtractAudio,
		flagAudioFormat, "flac",
		flagAudioQuality, "0",
		flagOutput, destNoExt + ".%(ext)s",
		flagEndOfOptions, url,
	}
}

// Video downloads url as an mp4 to dest.
func (d *Downloader) Video(ctx context.Context, url, dest string) error {
	if _, err := d.Run.Run(ctx, VideoArgs(url, dest)...); err != nil {
		return errors.Wrap(err, "ytdlp.video", "yt-dlp video download failed").WithField("source", url)
	}
	return requireFile(dest, url)
}

// Audio extracts the best audio of url to destNoExt + ".flac" and returns that path.
func (d *Downloader) Audio(ctx context.Context, url, destNoExt string) (string, error) {
	if _, err := d.Run.Run(ctx, AudioArgs(url, destNoExt)...); err != nil {
		return "", errors.Wrap(err, "ytdlp.audio", "yt-dlp audio extraction failed").WithField("source", url)
	}
	path := destNoExt + ".flac"
	return path, requireFile(path, url)
}

func requireFile(path, url string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.OutputNotFound(path).WithField("source", url)
	}
	return nil
}
