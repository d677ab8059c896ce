package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mdwatch/internal/config"
	"github.com/hupe1980/mdwatch/internal/logging"
	"github.com/hupe1980/mdwatch/internal/watch"
)

func newConvertCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file.md>...",
		Short: "Convert Markdown files once without watching",
		Long: `Convert runs the same pipeline as a watch session for each file given,
writing {output}/{name}.html. Files are subject to the same extension rules:
*.html files are skipped and any other extension is rejected unless
--on-unsupported=skip is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := logging.FromContext(ctx)

			policy, err := watch.ParsePolicy(cfg.OnUnsupported)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			if err := watch.ValidateDir("output", cfg.Output); err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			pipeline := newPipeline(cmd, cfg, logger)
			if err := pipeline.Check(); err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			for _, path := range args {
				convertible, extErr := watch.CheckExtension(path)
				if extErr != nil {
					if err := watch.ApplyPolicy(policy, logger, extErr); err != nil {
						return err
					}

					continue
				}

				if !convertible {
					continue
				}

				res, convErr := pipeline.Convert(ctx, path)
				if convErr != nil {
					return fmt.Errorf("converting %s: %w", path, convErr)
				}

				fmt.Fprintf(cmd.OutOrStdout(), "generated %s -> %s\n", path, res.OutputAbs)
			}

			return nil
		},
	}

	return cmd
}
