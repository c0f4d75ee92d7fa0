package processor

import (
	"context"

	"mediakit/internal/compose"
	"mediakit/internal/pkg/errors"
	"mediakit/internal/pkg/logger"
)

// InputFetcher materializes one remote source as a job-prefixed local file.
type InputFetcher interface {
	Download(ctx context.Context, jobID string, index int, rawURL string) (string, error)
}

type InputHandler struct {
	fetcher InputFetcher
	log     *logger.Logger
}

func NewInputHandler(fetcher InputFetcher, log *logger.Logger) *InputHandler {
	if log == nil {
		log = logger.NewDiscard()
	}
	return &InputHandler{fetcher: fetcher, log: log.WithComponent("inputs")}
}

// Materialize downloads every input in request order. Files fetched before a
// failure stay on disk for the sweep to collect.
func (ih *InputHandler) Materialize(ctx context.Context, jobID string, inputs []compose.Input) ([]compose.LocalInput, error) {
	local := make([]compose.LocalInput, 0, len(inputs))

	for i, in := range inputs {
		path, err := ih.fetcher.Download(ctx, jobID, i, in.FileURL)
		if err != nil {
			if errors.GetCode(err) == errors.CodeInternal {
				err = errors.Download(in.FileURL, err)
			}
			return nil, errors.Wrap(err, "processor.inputs", "failed to materialize inputs").
				WithField("input_index", i)
		}
		local = append(local, compose.LocalInput{Path: path, Options: in.Options})
	}

	ih.log.FromContext(ctx).Debug("inputs materialized", "count", len(local))
	return local, nil
}
