package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/semgrep-deps-export/pkg/cache"
)

// cacheCommand groups the repository listing cache subcommands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the repository listing cache",
		Long: `Repository listings are cached for an hour when --cache-url names a backend:
file:// for the user cache directory, file://<dir> or redis://<host>/<db>.
Without it every run lists the deployment's projects again.`,
	}
	cmd.AddCommand(c.cacheClearCommand(), c.cacheForgetCommand(), c.cachePathCommand())
	return cmd
}

// cacheClearCommand empties the default file cache directory.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached listing from the file cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			fc, err := cache.NewFileCache(dir)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			n, err := fc.Clear()
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Removed %d cached listings", n)
			printDetail("%s", fc.Dir())
			return nil
		},
	}
}

// cacheForgetCommand drops the configured deployment's listing from the
// configured backend, file or Redis.
func (c *CLI) cacheForgetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Drop the cached repository listing of the configured deployment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			c.applyLogLevel(cfg.LogLevel)

			client, ch, err := c.newClient(cfg)
			if err != nil {
				return err
			}
			defer ch.Close()

			if err := client.ForgetRepositories(cmd.Context()); err != nil {
				return fmt.Errorf("forget repositories: %w", err)
			}
			printSuccess("Repository listing of %s will be fetched again", orDash(cfg.DeploymentSlug))
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
