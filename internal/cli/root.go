// Package cli implements the cobra command tree for mdwatch.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mdwatch/internal/config"
	"github.com/hupe1980/mdwatch/internal/logging"
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it until it finishes or the process
// receives SIGINT/SIGTERM, and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCommand()
	cmd.SetErr(os.Stderr)

	return execute(ctx, cmd)
}

// execute runs cmd and reports any error as "ERROR: <message>" on the
// command's error stream.
func execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "ERROR: %v\n", err)

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return 1
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached. Running it without a subcommand starts a watch
// session.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "mdwatch",
		Short: "Convert Markdown files to HTML whenever they are saved",
		Long: `mdwatch watches a directory for modified Markdown files and converts
each one into an HTML file in the output directory.

Generated pages can be wrapped in a template. The template receives the
converted document as "html" and may reference it as {{ .html }}, or with
the handlebars-style {{html}} / {{{html}}} placeholders.

Writing any file other than *.md or *.html into the watched directory stops
the session, unless --on-unsupported=skip is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			logger := logging.Setup(cfg, cmd.ErrOrStderr())

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("input", cfg.Input),
				slog.String("output", cfg.Output),
				slog.String("template", cfg.Template),
				slog.Duration("debounce", cfg.Debounce),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd)
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .mdwatch.yaml)")
	pf.StringP("input", "i", ".", "directory to watch for Markdown files")
	pf.StringP("output", "o", ".", "directory to write generated HTML into")
	pf.StringP("template", "t", "", "template file wrapping each generated page")
	pf.Duration("debounce", config.DefaultDebounce, "quiet period before a burst of writes is converted")
	pf.String("on-unsupported", config.UnsupportedFail, "policy for non-Markdown files: fail, skip")
	pf.Bool("show-diff", false, "print a unified diff of each regenerated file")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Err: err}
	})

	cmd.AddCommand(
		newConvertCommand(),
		newConfigCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
