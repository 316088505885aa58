// Package cli implements the renoma command-line interface.
//
// # Commands
//
//   - check: crawl node_modules and lint every installed package (default)
//   - rules: list the available rules
//   - graph: draw the crawled dependency graph
//   - browse: explore check results interactively
//   - cache: manage the persistent result cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/renoma/pkg/buildinfo"
	"github.com/matzehuels/renoma/pkg/cache"
	"github.com/matzehuels/renoma/pkg/errors"
	"github.com/matzehuels/renoma/pkg/locate"
	"github.com/matzehuels/renoma/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

// appName is used for directories and display.
const appName = "renoma"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// ErrFindings is returned when a check found packages with lint errors.
// The binary exits 1 without printing it.
var ErrFindings = stderrors.New("lint errors found")

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	// Out receives command output. Logs go to the logger's writer.
	Out io.Writer
	// EnvFile is the dotenv file merged under RENOMA_* variables.
	EnvFile string
}

// New creates a CLI that logs to w at the given level and writes output to
// stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:  newLogger(w, level),
		Out:     os.Stdout,
		EnvFile: ".env",
	}
}

// SetLogLevel updates the logger's level. At debug level scan and cache
// events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= LogDebug {
		h := debugHooks{logger: c.Logger}
		observability.SetScanHooks(h)
		observability.SetCacheHooks(h)
	}
}

// RootCommand creates the root command. Run without a subcommand it behaves
// like "renoma check".
func (c *CLI) RootCommand() *cobra.Command {
	flags := &checkFlags{}
	root := &cobra.Command{
		Use:   "renoma [dir]",
		Short: "A recursive node modules analyzer with opinionated package health checks",
		Long: `renoma walks the installed dependency graph under node_modules and checks
every package for suspicious (non-registry) and unused dependencies.`,
		Version:      buildinfo.Version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, dirArg(args), flags)
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	flags.register(root)

	root.AddCommand(c.checkCommand())
	root.AddCommand(c.rulesCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

func dirArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// findRoot returns the nearest package.json at or above dir.
func findRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", dir)
	}
	path, ok := locate.FindNearestManifest(abs)
	if !ok {
		return "", errors.New(errors.ErrCodeManifestNotFound, "No closest package.json found from %s", abs)
	}
	return path, nil
}

// openCache builds the persistent cache selected by cfg. A file cache that
// cannot be created degrades to no caching.
func (c *CLI) openCache(ctx context.Context, cfg Config) (cache.Cache, error) {
	switch cfg.Cache {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir, err := cacheDir()
		if err != nil {
			c.Logger.Warn("result cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			c.Logger.Warn("result cache disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// outputWriter returns the writer for path, or c.Out when path is empty.
// The returned close function must be called when done.
func (c *CLI) outputWriter(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return c.Out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the result cache directory (~/.cache/renoma/results/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName, "results"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName, "results"), nil
}
