package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file and environment
overrides are applied. The output is valid TOML and can be saved as a
starting config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			path := c.ConfigPath
			if path == "" {
				path, _ = config.DefaultPath()
			}
			printDetail("# %s", path)
			return cfg.Encode(os.Stdout)
		},
	}
}
