package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mdwatch/internal/config"
	"github.com/hupe1980/mdwatch/internal/convert"
	"github.com/hupe1980/mdwatch/internal/logging"
	"github.com/hupe1980/mdwatch/internal/watch"
)

// newSource is the notification source used by watch sessions. Tests swap
// it for a synthetic one.
var newSource = func() watch.Source { return watch.NewFSNotifySource() }

// newPipeline builds the conversion pipeline from the loaded configuration.
func newPipeline(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) *convert.Pipeline {
	return convert.New(convert.Options{
		OutputDir: cfg.Output,
		Template:  cfg.Template,
		ShowDiff:  cfg.ShowDiff,
		DiffOut:   cmd.OutOrStdout(),
		Color:     !cfg.NoColor,
		Logger:    logger,
	})
}

func runWatch(cmd *cobra.Command) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)

	policy, err := watch.ParsePolicy(cfg.OnUnsupported)
	if err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	if err := watch.ValidateDirs(cfg.Input, cfg.Output); err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	pipeline := newPipeline(cmd, cfg, logger)

	// A broken template stops the session before anything is converted.
	if err := pipeline.Check(); err != nil {
		return &ExitError{Code: 2, Err: err}
	}

	handle := func(hCtx context.Context, path string) (string, error) {
		res, convErr := pipeline.Convert(hCtx, path)
		if convErr != nil {
			return "", convErr
		}

		if res.Diff != nil {
			logger.Info("regenerated", slog.String("output", res.OutputAbs), slog.String("changes", res.Diff.Summary()))
		}

		return res.OutputAbs, nil
	}

	w := watch.New(newSource(), handle, watch.Options{
		InputDir:      cfg.Input,
		OutputDir:     cfg.Output,
		Debounce:      cfg.Debounce,
		OnUnsupported: policy,
		Logger:        logger,
		Out:           cmd.OutOrStdout(),
		Quiet:         cfg.Quiet,
	})

	return w.Run(ctx)
}
