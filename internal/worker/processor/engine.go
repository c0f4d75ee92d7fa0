package processor

import (
	"context"

	"mediakit/internal/compose"
	"mediakit/internal/media/runner"
	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
)

// Executor runs the composed argument vector.
type Executor interface {
	Run(ctx context.Context, args ...string) (runner.Result, error)
}

// Engine turns a composition request into uploaded artifacts.
type Engine struct {
	composer  *compose.Composer
	exec      Executor
	extractor *compose.Extractor
	inputs    *InputHandler
	outputs   *OutputHandler
	cleanup   *Cleanup
	log       *logger.Logger
}

func NewEngine(
	composer *compose.Composer,
	exec Executor,
	extractor *compose.Extractor,
	inputs *InputHandler,
	outputs *OutputHandler,
	cleanup *Cleanup,
	log *logger.Logger,
) *Engine {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &Engine{
		composer:  composer,
		exec:      exec,
		extractor: extractor,
		inputs:    inputs,
		outputs:   outputs,
		cleanup:   cleanup,
		log:       log.WithComponent("engine"),
	}
}

// Compose runs the pipeline: materialize, compose, execute, resolve, annotate
// and upload. The job's temp files are swept whatever the outcome.
func (e *Engine) Compose(ctx context.Context, jobID string, req compose.Request) ([]OutputFile, error) {
	ctx = withJobID(ctx, jobID)
	defer e.cleanup.Sweep(ctx, jobID)
	log := e.log.FromContext(ctx)

	local, err := e.inputs.Materialize(ctx, jobID, req.Inputs)
	if err != nil {
		return nil, err
	}

	plan := e.composer.Compose(jobID, local, req)
	log.Info("executing", "command", plan.String())

	if _, err := e.exec.Run(ctx, plan.Args...); err != nil {
		return nil, errors.Wrap(err, "processor.execute", "composition failed")
	}

	artifacts, err := compose.Resolve(plan.Outputs)
	if err != nil {
		return nil, err
	}
	e.extractor.Annotate(ctx, artifacts, req.Metadata)

	files, err := e.outputs.Upload(ctx, jobID, artifacts)
	if err != nil {
		return nil, err
	}
	log.Info("composition finished", "artifacts", len(files))
	return files, nil
}

// withJobID tags ctx for logging unless it already carries a job id.
func withJobID(ctx context.Context, jobID string) context.Context {
	if logger.JobIDFromContext(ctx) != "" {
		return ctx
	}
	return logger.ContextWithJobID(ctx, jobID)
}
