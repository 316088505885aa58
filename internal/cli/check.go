package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/renoma/pkg/cache"
	"github.com/matzehuels/renoma/pkg/crawl"
	"github.com/matzehuels/renoma/pkg/errors"
	"github.com/matzehuels/renoma/pkg/lint"
	"github.com/matzehuels/renoma/pkg/render"
	"github.com/matzehuels/renoma/pkg/scan"
)

// checkFlags holds the flags shared by check, browse and the root command.
type checkFlags struct {
	limit      int
	errorLimit int
	ignore     []string
	rules      []string
	extensions []string
	jobs       int
	format     string
	output     string
	cache      string
	redisURL   string
	refresh    bool
	summary    bool
}

func (f *checkFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.limit, "limit", 0, "maximum number of packages to check (0 = all)")
	fs.IntVar(&f.errorLimit, "error-limit", 0, "stop after this many packages with errors (0 = no limit)")
	fs.StringSliceVar(&f.ignore, "ignore", nil, "package names to skip (comma-separated)")
	fs.StringSliceVar(&f.rules, "rules", nil, "rule ids or /regex/ patterns to enable (default: all)")
	fs.StringSliceVar(&f.extensions, "ext", nil, "source extensions searched for imports (default: .js,.ts,.jsx,.tsx,.svelte,.vue,.css,.scss,.sass,.less)")
	fs.IntVar(&f.jobs, "jobs", 0, "concurrent package analyses (0 = number of CPUs)")
	fs.StringVarP(&f.format, "format", "f", "", "output format: text, json, sarif")
	fs.StringVarP(&f.output, "output", "o", "", "write output to file instead of stdout")
	fs.StringVar(&f.cache, "cache", "", "result cache backend: none, file, redis")
	fs.StringVar(&f.redisURL, "redis-url", "", "redis URL for --cache redis")
	fs.BoolVar(&f.refresh, "refresh", false, "ignore cached results and re-analyze every package")
	fs.BoolVar(&f.summary, "summary", false, "print run statistics and duplicate versions")
}

// apply overlays flags the user actually set.
func (f *checkFlags) apply(cmd *cobra.Command, cfg *Config) {
	fs := cmd.Flags()
	if fs.Changed("limit") {
		cfg.Limit = f.limit
	}
	if fs.Changed("error-limit") {
		cfg.ErrorLimit = f.errorLimit
	}
	if fs.Changed("ignore") {
		cfg.Ignore = f.ignore
	}
	if fs.Changed("rules") {
		cfg.Rules = f.rules
	}
	if fs.Changed("ext") {
		cfg.Extensions = f.extensions
	}
	if fs.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if fs.Changed("format") {
		cfg.Format = f.format
	}
	if fs.Changed("cache") {
		cfg.Cache = f.cache
	}
	if fs.Changed("redis-url") {
		cfg.RedisURL = f.redisURL
	}
	if fs.Changed("summary") {
		cfg.Summary = f.summary
	}
}

// checkCommand creates the check command.
func (c *CLI) checkCommand() *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Lint every package in the installed dependency graph",
		Long: `Check finds the nearest package.json at or above dir, crawls its installed
dependencies breadth-first and lints each package once per name@version.

Exit status is 1 when any package has lint errors.`,
		Example: `  # Check the project in the current directory
  renoma check

  # Stop after the first five packages with errors, skipping two packages
  renoma check --error-limit 5 --ignore fsevents,esbuild

  # Only look for unused dependencies, as SARIF
  renoma check --rules renoma/no-unused-dependencies -f sarif -o renoma.sarif`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, dirArg(args), flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, dir string, flags *checkFlags) error {
	ctx := cmd.Context()
	run, err := c.prepare(cmd, dir, flags)
	if err != nil {
		return err
	}
	format, err := render.ParseFormat(run.cfg.Format)
	if err != nil {
		return err
	}

	res, err := c.scan(ctx, run, flags.refresh)
	if err != nil {
		return err
	}

	w, closeOut, err := c.outputWriter(flags.output)
	if err != nil {
		return err
	}
	if err := render.Write(w, format, res.result, render.Options{Root: run.projectDir, Summary: run.cfg.Summary}); err != nil {
		closeOut()
		return fmt.Errorf("write output: %w", err)
	}
	if err := closeOut(); err != nil {
		return err
	}
	if flags.output != "" {
		printFile(cmd.ErrOrStderr(), flags.output)
	}

	if res.result.ErrorCount > 0 {
		return ErrFindings
	}
	return nil
}

// =============================================================================
// Pipeline
// =============================================================================

// runSetup is the resolved input of a crawl and scan.
type runSetup struct {
	rootManifest string
	projectDir   string
	cfg          Config
	rules        []lint.Rule
}

// prepare locates the root manifest and resolves configuration and rules.
func (c *CLI) prepare(cmd *cobra.Command, dir string, flags *checkFlags) (*runSetup, error) {
	root, err := findRoot(dir)
	if err != nil {
		return nil, err
	}
	projectDir := filepath.Dir(root)

	cfg, err := loadConfig(c.EnvFile, projectDir)
	if err != nil {
		return nil, err
	}
	if flags != nil {
		flags.apply(cmd, &cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}

	filter, err := lint.ParseFilter(cfg.Rules)
	if err != nil {
		return nil, err
	}
	rules := filter.Select()
	if len(rules) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRule, "no rules match %v (run \"renoma rules\" to list them)", cfg.Rules)
	}

	return &runSetup{rootManifest: root, projectDir: projectDir, cfg: cfg, rules: rules}, nil
}

// scanOutput is a crawl plus the lint results for it.
type scanOutput struct {
	records []crawl.Record
	result  *scan.Result
}

// scan crawls the dependency graph and lints it.
func (c *CLI) scan(ctx context.Context, run *runSetup, refresh bool) (*scanOutput, error) {
	store, err := c.openCache(ctx, run.cfg)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	prog := newProgress(c.Logger)
	records, err := crawl.Crawl(ctx, run.rootManifest, crawl.Options{
		Limit:  run.cfg.Limit,
		Logger: c.Logger.Debugf,
	})
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Crawled %d packages", len(records)))

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Checking %d packages...", len(records)))
	if c.Logger.GetLevel() > LogDebug {
		spinner.Start()
	}
	defer spinner.Stop()
	runner := scan.NewRunner(store, cache.NewScopedKeyer(nil, cache.KeyPrefix), c.Logger)
	result, err := runner.Run(ctx, records, scan.Options{
		Rules:      run.rules,
		Extensions: run.cfg.Extensions,
		Ignore:     run.cfg.Ignore,
		ErrorLimit: run.cfg.ErrorLimit,
		Jobs:       run.cfg.Jobs,
		Refresh:    refresh,
	})
	if err != nil {
		return nil, err
	}
	return &scanOutput{records: records, result: result}, nil
}
