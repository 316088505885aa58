package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/renoma/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the persistent result cache",
	}
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var backend, redisURL string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached lint results",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.EnvFile, projectDir("."))
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("cache") {
				cfg.Cache = backend
			}
			if cmd.Flags().Changed("redis-url") {
				cfg.RedisURL = redisURL
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			if cfg.Cache == cacheNone {
				printInfo(c.Out, "Result cache is disabled")
				return nil
			}

			store, err := c.openCache(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%s cache cannot be cleared", cfg.Cache)
			}
			if err := clearer.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			printSuccess(c.Out, "Cleared cached results")
			if fc, ok := store.(*cache.FileCache); ok {
				printDetail(c.Out, "Directory: %s", fc.Dir())
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&backend, "cache", "", "cache backend: file, redis")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "redis URL for --cache redis")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.Out, dir)
			return nil
		},
	}
}

// projectDir returns the directory of the nearest package.json at or above
// dir, or dir itself when there is none.
func projectDir(dir string) string {
	root, err := findRoot(dir)
	if err != nil {
		return dir
	}
	return filepath.Dir(root)
}
