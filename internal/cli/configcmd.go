package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/mdwatch/internal/config"
)

// configView is the YAML form of config.Config, using the same keys the
// config file accepts.
type configView struct {
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	Template      string `yaml:"template"`
	Debounce      string `yaml:"debounce"`
	OnUnsupported string `yaml:"on-unsupported"`
	ShowDiff      bool   `yaml:"show-diff"`
	LogLevel      string `yaml:"log-level"`
	LogFormat     string `yaml:"log-format"`
	NoColor       bool   `yaml:"no-color"`
	Quiet         bool   `yaml:"quiet"`
}

func newConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration resulting from flags, MDWATCH_* environment
variables and the config file, as YAML. The output can be saved as
.mdwatch.yaml.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.FromContext(cmd.Context())

			data, err := yaml.Marshal(configView{
				Input:         cfg.Input,
				Output:        cfg.Output,
				Template:      cfg.Template,
				Debounce:      cfg.Debounce.String(),
				OnUnsupported: cfg.OnUnsupported,
				ShowDiff:      cfg.ShowDiff,
				LogLevel:      cfg.LogLevel,
				LogFormat:     cfg.LogFormat,
				NoColor:       cfg.NoColor,
				Quiet:         cfg.Quiet,
			})
			if err != nil {
				return fmt.Errorf("marshaling config: %w", err)
			}

			if cfg.ConfigFile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", cfg.ConfigFile)
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}
}
