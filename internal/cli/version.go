package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/mdwatch/internal/version"
)

func newVersionCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Display the version, git commit, build date, Go version, and platform.",
		Args:  cobra.NoArgs,
		// Version output needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := version.Get().Encode(format)
			if err != nil {
				return &ExitError{Code: 2, Err: err}
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, yaml")

	return cmd
}
