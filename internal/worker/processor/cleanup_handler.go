package processor

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
)

// Cleanup removes a job's artifacts from the temp directory.
type Cleanup struct {
	tempDir string
	log     *logger.Logger
}

func NewCleanup(tempDir string, log *logger.Logger) *Cleanup {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Cleanup{tempDir: tempDir, log: log.WithComponent("cleanup")}
}

// Sweep deletes every temp dir entry owned by jobID.
// Failures are logged and never returned.
func (c *Cleanup) Sweep(ctx context.Context, jobID string) {
	log := c.log.FromContext(ctx)

	var paths []string
	if jobID != "" {
		entries, err := os.ReadDir(c.tempDir)
		if err != nil && !os.IsNotExist(err) {
			log.Warn("temp dir unreadable", "code", string(errors.CodeCleanup), "dir", c.tempDir, "error", err)
		}
		for _, e := range entries {
			if ownedBy(e.Name(), jobID) {
				paths = append(paths, filepath.Join(c.tempDir, e.Name()))
			}
		}
	}

	removed := 0
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := os.RemoveAll(p)
		if err != nil {
			log.Warn("cleanup failed", "code", string(errors.CodeCleanup), "path", p, "error", err)
			continue
		}
		removed++
	}
	log.Debug("temp files swept", "count", removed)
}

// ownedBy matches "{job}", "{job}_..." and "{job}.ext" so one job id never
// claims another job's files.
func ownedBy(name, jobID string) bool {
	if !strings.HasPrefix(name, jobID) {
		return false
	}
	rest := name[len(jobID):]
	return rest == "" || rest[0] == '_' || rest[0] == '.'
}
