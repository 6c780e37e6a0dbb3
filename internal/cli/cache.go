package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/palpiteiro/palpiteiro/pkg/cache"
	"github.com/palpiteiro/palpiteiro/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the asset and artifact cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear cached assets and rendered artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			return clearCache(cfg)
		},
	}
}

func clearCache(cfg *config.Config) error {
	if cfg.Cache.Backend != cache.BackendFile {
		printWarning("The %s cache backend is not cleared by palpiteiro", cfg.Cache.Backend)
		return nil
	}

	fc, err := cache.NewFileCache(cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	n, err := fc.Entries()
	if err != nil {
		return fmt.Errorf("count cache entries: %w", err)
	}
	if n == 0 {
		printInfo("Cache is empty")
		return nil
	}
	if err := fc.Clear(); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}

	printSuccess("Cleared %d cached entries", n)
	printDetail("Directory: %s", fc.Dir())
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			fmt.Println(cfg.Cache.Dir)
			return nil
		},
	}
}
