// Package ffprobe runs ffprobe against a media file and decodes its JSON report.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result is the subset of the ffprobe report the service reads.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream holds the per-stream values used when the container omits them.
type Stream struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// Format captures container-level metadata. ffprobe reports numbers as strings.
type Format struct {
	Duration string `json:"duration"`
	BitRate  string `json:"bit_rate"`
}

// Inspect executes ffprobe once and decodes the report. Only stdout is parsed;
// stderr is attached to the error when the probe fails.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return Parse(stdout.Bytes())
}

// Parse decodes a raw ffprobe JSON report.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// DurationSeconds returns the container duration, or the longest stream
// duration when the container has none. ok is false when neither is a finite,
// non-negative number.
func (r Result) DurationSeconds() (float64, bool) {
	if d, ok := parseFloat(r.Format.Duration); ok && d >= 0 {
		return d, true
	}
	longest, found := 0.0, false
	for _, st := range r.Streams {
		if d, ok := parseFloat(st.Duration); ok && d >= 0 && (!found || d > longest) {
			longest, found = d, true
		}
	}
	return longest, found
}

// BitRate returns the container bit rate in bits per second, or the sum of
// the stream bit rates when the container has none.
func (r Result) BitRate() (int64, bool) {
	if rate, ok := parseFloat(r.Format.BitRate); ok && rate >= 0 {
		return int64(rate), true
	}
	var total float64
	found := false
	for _, st := range r.Streams {
		if rate, ok := parseFloat(st.BitRate); ok && rate >= 0 {
			total += rate
			found = true
		}
	}
	return int64(total), found
}

func parseFloat(value string) (float64, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || cleaned == "N/A" {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, false
	}
	return parsed, true
}
