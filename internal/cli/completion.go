package cli

import (
	"github.com/spf13/cobra"
)

func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for bash, zsh, fish or powershell.

  $ source <(mdwatch completion bash)
  $ mdwatch completion zsh > "${fpath[1]}/_mdwatch"
  $ mdwatch completion fish > ~/.config/fish/completions/mdwatch.fish
  PS> mdwatch completion powershell | Out-String | Invoke-Expression
`,
		// Completion scripts need no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()

			switch args[0] {
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			default:
				return root.GenBashCompletionV2(w, true)
			}
		},
	}
}
