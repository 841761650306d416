package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The logger is attached to each command's context and is reachable through
// loggerFromContext.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Optima tracks optimization jobs and draws their results",
		Long:         `Optima is a client for the optimization server: it polls and cancels long-running jobs, serves a local task backend for development, and renders pie and series charts with non-overlapping labels.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/optima/config.toml)")

	root.AddCommand(c.pollCommand())
	root.AddCommand(c.killCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.statusCommand())
	root.AddCommand(c.pieCommand())
	root.AddCommand(c.chartCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
