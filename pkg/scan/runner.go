// Package scan runs lint rules over a crawled dependency graph.
//
// Each record is keyed by name@version. The first record with a given key
// is analyzed; later records with the same key reuse its outcome and point
// back at the first record's graph path. Analyses run concurrently, but
// reports are produced in crawl order and ownership of a key is decided in
// crawl order, so the output is the same as a sequential run.
//
// # Usage
//
//	records, err := crawl.Crawl(ctx, rootManifest, crawl.Options{})
//	runner := scan.NewRunner(c, nil, logger)
//	result, err := runner.Run(ctx, records, scan.Options{ErrorLimit: 10})
package scan

import (
	"context"
	"encoding/json"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/renoma/pkg/cache"
	"github.com/matzehuels/renoma/pkg/crawl"
	"github.com/matzehuels/renoma/pkg/lint"
	"github.com/matzehuels/renoma/pkg/locate"
	"github.com/matzehuels/renoma/pkg/manifest"
	"github.com/matzehuels/renoma/pkg/observability"
)

// Options configures a run.
type Options struct {
	// Rules to evaluate. Nil means every rule.
	Rules []lint.Rule
	// Extensions for the usage scan. Nil means lint.DefaultExtensions.
	Extensions []string
	// Ignore lists package names whose records are skipped.
	Ignore []string
	// ErrorLimit stops the run once this many records had issues. Zero
	// means no limit.
	ErrorLimit int
	// Jobs bounds concurrent analyses. Zero means GOMAXPROCS.
	Jobs int
	// Refresh skips persistent cache reads. Results are still written.
	Refresh bool
}

func (o Options) withDefaults() Options {
	if o.Rules == nil {
		o.Rules = lint.Rules
	}
	if len(o.Extensions) == 0 {
		o.Extensions = lint.DefaultExtensions
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
	if o.ErrorLimit < 0 {
		o.ErrorLimit = 0
	}
	return o
}

func (o Options) keyOpts() cache.ResultKeyOpts {
	ids := make([]string, len(o.Rules))
	for i, r := range o.Rules {
		ids[i] = r.ID
	}
	return cache.ResultKeyOpts{Rules: ids, Extensions: o.Extensions}
}

// Runner drives analyses with a persistent result cache.
//
// A Runner holds no per-run state; the memo lives for one Run call.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables persistence and a nil
// keyer uses cache.DefaultKeyer.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// slot pairs a record with the memo entry that will hold its outcome.
type slot struct {
	rec   crawl.Record
	entry *Entry
	owner bool
}

// Run analyzes records and returns one report per non-ignored record, in
// record order. It returns an error only when ctx is canceled.
func (r *Runner) Run(ctx context.Context, records []crawl.Record, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	start := time.Now()

	selected := make([]crawl.Record, 0, len(records))
	for _, rec := range records {
		if !slices.Contains(opts.Ignore, rec.Name()) {
			selected = append(selected, rec)
		}
	}

	res := &Result{
		RunID:      uuid.NewString(),
		Reports:    make([]Report, 0, len(selected)),
		Duplicates: FindDuplicates(records),
		Stats: Stats{
			Records: len(records),
			Ignored: len(records) - len(selected),
		},
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	memo := NewMemo()
	var g errgroup.Group
	g.SetLimit(opts.Jobs)

	slots := make(chan slot, opts.Jobs)
	go func() {
		defer close(slots)
		for _, rec := range selected {
			entry, owner := memo.Claim(rec.Key())
			if owner {
				g.Go(func() error {
					entry.resolve(r.analyze(runCtx, rec, opts))
					return nil
				})
			}
			select {
			case slots <- slot{rec: rec, entry: entry, owner: owner}:
			case <-runCtx.Done():
				return
			}
		}
	}()

	// stop cancels pending analyses and waits for the dispatcher and every
	// started analysis to return.
	stop := func() {
		cancel()
		for range slots {
		}
		_ = g.Wait()
	}

	for s := range slots {
		out, err := s.entry.Wait(ctx)
		if err != nil {
			stop()
			return nil, err
		}
		if s.owner {
			res.Stats.Analyzed++
			if out.Persisted {
				res.Stats.CacheHits++
			}
		} else {
			res.Stats.MemoHits++
			observability.Cache().OnCacheHit(ctx, "memo")
		}
		res.Reports = append(res.Reports, newReport(s.rec, out, !s.owner))

		if s.owner && out.HasIssues() {
			res.ErrorCount++
			if opts.ErrorLimit > 0 && res.ErrorCount >= opts.ErrorLimit {
				res.Truncated = true
				r.Logger.Info("error limit reached", "limit", opts.ErrorLimit)
				break
			}
		}
	}
	stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Stats.Duration = time.Since(start)
	r.Logger.Info("scanned dependencies",
		"records", res.Stats.Records,
		"analyzed", res.Stats.Analyzed,
		"with_issues", res.ErrorCount,
		"duration", res.Stats.Duration)
	return res, nil
}

// analyze runs the rules for one record, consulting the persistent cache
// for immutable installs.
func (r *Runner) analyze(ctx context.Context, rec crawl.Record, opts Options) Outcome {
	start := time.Now()
	out := Outcome{Title: rec.Title()}

	m, err := manifest.Read(filepath.Join(rec.Dir, manifest.FileName))
	if err != nil {
		return r.failed(ctx, rec, out, start, err)
	}

	var key string
	if persistable(rec) {
		keyOpts := opts.keyOpts()
		keyOpts.Installed = installedDependencies(m, rec.Dir)
		key = r.Keyer.ResultKey(rec.Name(), rec.Version, keyOpts)
		if !opts.Refresh {
			if diags, ok := r.load(ctx, key); ok {
				out.Diagnostics, out.Persisted = diags, true
				return out
			}
		}
	}

	out.Diagnostics, err = lint.Run(ctx, opts.Rules, lint.Target{
		Manifest:   m,
		Dir:        rec.Dir,
		Extensions: opts.Extensions,
	})
	if err != nil {
		return r.failed(ctx, rec, out, start, err)
	}
	observability.Scan().OnAnalyze(ctx, rec.Key(), len(out.Diagnostics), time.Since(start), nil)
	r.Logger.Debug("analyzed", "package", rec.Key(), "diagnostics", len(out.Diagnostics), "duration", time.Since(start))

	if key != "" {
		r.store(ctx, key, out.Diagnostics)
	}
	return out
}

func (r *Runner) failed(ctx context.Context, rec crawl.Record, out Outcome, start time.Time, err error) Outcome {
	observability.Scan().OnAnalyze(ctx, rec.Key(), len(out.Diagnostics), time.Since(start), err)
	if ctx.Err() == nil {
		r.Logger.Warn("analysis failed", "package", rec.Key(), "err", err)
	}
	out.Err = err
	return out
}

// installedDependencies resolves each runtime dependency of m from dir as
// "name@version". Missing installs are recorded as "name@-" and unreadable
// manifests as "name@?".
func installedDependencies(m *manifest.Manifest, dir string) []string {
	out := make([]string, 0, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		version := "-"
		if path, ok := locate.FindInstalledManifest(dep.Name, dir); ok {
			if dm, err := manifest.Read(path); err == nil {
				version = dm.Version
			} else {
				version = "?"
			}
		}
		out = append(out, dep.Name+"@"+version)
	}
	return out
}

func (r *Runner) load(ctx context.Context, key string) ([]lint.Diagnostic, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "persistent")
		return nil, false
	}
	var diags []lint.Diagnostic
	if err := json.Unmarshal(data, &diags); err != nil {
		observability.Cache().OnCacheMiss(ctx, "persistent")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "persistent")
	return diags, true
}

func (r *Runner) store(ctx context.Context, key string, diags []lint.Diagnostic) {
	data, err := json.Marshal(diags)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, cache.TTLResult); err != nil {
		r.Logger.Warn("cache write failed", "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "persistent", len(data))
}

// persistable reports whether a record's result depends only on its
// name@version: the install lives under node_modules (not a workspace link
// resolved elsewhere) and has a version.
func persistable(rec crawl.Record) bool {
	if rec.Version == "" {
		return false
	}
	return slices.Contains(strings.Split(filepath.ToSlash(rec.Dir), "/"), locate.InstallDir)
}
