package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nutrilabel. Product names are completed
for render and batch from the configured sheet.

To load completions:

Bash:
  $ source <(nutrilabel completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nutrilabel completion bash > /etc/bash_completion.d/nutrilabel
  # macOS:
  $ nutrilabel completion bash > $(brew --prefix)/etc/bash_completion.d/nutrilabel

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ nutrilabel completion zsh > "${fpath[1]}/_nutrilabel"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nutrilabel completion fish | source

  # To load completions for each session, execute once:
  $ nutrilabel completion fish > ~/.config/fish/completions/nutrilabel.fish

PowerShell:
  PS> nutrilabel completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> nutrilabel completion powershell > nutrilabel.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeProducts completes product names from the configured sheet,
// skipping names already given.
func (c *CLI) completeProducts(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	snapshots, err := c.newSnapshots(cmd.Context(), cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer snapshots.Close()

	entry, _ := c.newLoader(cfg, snapshots).Load(cmd.Context())
	if entry == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	given := make(map[string]bool, len(args))
	for _, a := range args {
		given[a] = true
	}
	var names []string
	for _, name := range entry.Catalog.Names() {
		if !given[name] && strings.HasPrefix(strings.ToLower(name), strings.ToLower(toComplete)) {
			names = append(names, name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
