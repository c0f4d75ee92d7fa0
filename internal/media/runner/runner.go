// Package runner executes external media tools (ffmpeg, yt-dlp, whisper) as
// argument vectors and captures their output.
package runner

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"

	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
)

// Result is the captured output of a successful run.
type Result struct {
	Stdout string
	Stderr string
}

// ExitError reports a tool that failed to start or exited non-zero. Stderr is
// the tool's error stream, unmodified.
type ExitError struct {
	Binary   string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ExitError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("%s did not run: %v: %s", e.Binary, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s exited with status %d: %s", e.Binary, e.ExitCode, e.Stderr)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Runner runs one binary. The binary is never passed through a shell.
type Runner struct {
	Binary string
	Log    *logger.Logger
}

// New returns a Runner for binary.
func New(binary string, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Runner{Binary: binary, Log: log}
}

// Run executes the binary with args and waits for it to exit. Exit status is the
// only failure signal: a zero exit with non-empty stderr succeeds and the stderr
// text is logged at warn level. A failure returns a PROCESS_EXECUTION_ERROR
// wrapping *ExitError.
func (r *Runner) Run(ctx context.Context, args ...string) (Result, error) {
	if strings.TrimSpace(r.Binary) == "" {
		return Result{}, errors.New(errors.CodeProcessExecution, "no binary configured")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.Binary, args...) //nolint:gosec
	cmd.Stdin = nil
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log := r.Log.FromContext(ctx).WithComponent("runner")
	log.Debug("running external tool", "binary", r.Binary, "args", args)

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		if s := strings.TrimSpace(res.Stderr); s != "" {
			log.Warn("external tool wrote to stderr", "binary", r.Binary, "stderr", s)
		}
		return res, nil
	}

	exitErr := &ExitError{Binary: r.Binary, ExitCode: -1, Stderr: res.Stderr, Err: err}
	var ee *exec.ExitError
	if stderrors.As(err, &ee) {
		exitErr.ExitCode = ee.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		exitErr.Err = ctxErr
	}

	return res, errors.WrapWithCode(exitErr, errors.CodeProcessExecution, "runner.run", "command failed").
		WithField("binary", r.Binary).
		WithField("exit_code", exitErr.ExitCode)
}

// Stderr returns the captured error stream of a failed run, or "".
func Stderr(err error) string {
	var ee *ExitError
	if stderrors.As(err, &ee) {
		return ee.Stderr
	}
	return ""
}
