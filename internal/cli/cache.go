package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached charts and job outcomes",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry, including recorded job outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			cc, err := c.newCache(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cc.Close()

			if err := cache.Clear(cmd.Context(), cc); err != nil {
				return err
			}
			printSuccess("Cleared %s cache", cfg.Cache.Backend)
			printDetail("%s", cacheLocation(cfg.CacheOptions()))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			fmt.Println(cacheLocation(cfg.CacheOptions()))
			return nil
		},
	}
}

// cacheLocation describes the backend's storage location.
func cacheLocation(opts cache.Options) string {
	switch opts.Backend {
	case cache.BackendRedis:
		return "redis://" + opts.RedisAddr
	case cache.BackendMongo:
		return opts.MongoURI + " (database " + opts.MongoDatabase + ")"
	case cache.BackendNull:
		return "disabled"
	}
	return opts.Dir
}
