package scan

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/renoma/pkg/cache"
	"github.com/matzehuels/renoma/pkg/crawl"
	"github.com/matzehuels/renoma/pkg/lint"
	"github.com/matzehuels/renoma/pkg/manifest"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0644))
}

// diamondFixture builds a root depending on a and b, both of which depend
// on the hoisted c. c declares a suspicious dependency.
func diamondFixture(t *testing.T) []crawl.Record {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	nm := filepath.Join(root, "node_modules")
	writeManifest(t, root, `{"name": "root", "dependencies": {"a": "1", "b": "1"}}`)
	writeManifest(t, filepath.Join(nm, "a"), `{"name": "a", "version": "1.0.0", "dependencies": {"c": "1"}}`)
	writeManifest(t, filepath.Join(nm, "b"), `{"name": "b", "version": "1.0.0", "dependencies": {"c": "1"}}`)
	writeManifest(t, filepath.Join(nm, "c"), `{"name": "c", "version": "2.0.0", "dependencies": {"x": "user/x"}}`)

	records, err := crawl.Crawl(context.Background(), filepath.Join(root, "package.json"), crawl.Options{})
	require.NoError(t, err)
	return records
}

// countingRule flags suspicious specifiers and counts how often it runs.
func countingRule(n *atomic.Int32) lint.Rule {
	return lint.Rule{
		ID:   "test/counting",
		Kind: lint.KindSuspicious,
		Check: func(_ context.Context, t lint.Target) ([]lint.Diagnostic, error) {
			n.Add(1)
			return lint.FindSuspicious(t.Manifest.Dependencies), nil
		},
	}
}

func quietLogger() *log.Logger { return log.New(io.Discard) }

func titles(reports []Report) []string {
	out := make([]string, len(reports))
	for i, r := range reports {
		out[i] = r.Title
	}
	return out
}

// =============================================================================
// Runner
// =============================================================================

func TestRunAnalyzesEachVersionOnce(t *testing.T) {
	records := diamondFixture(t)
	var calls atomic.Int32

	runner := NewRunner(nil, nil, quietLogger())
	res, err := runner.Run(context.Background(), records, Options{
		Rules: []lint.Rule{countingRule(&calls)},
		Jobs:  4,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "a > c", "b > c"}, titles(res.Reports))
	assert.EqualValues(t, 3, calls.Load())

	first, second := res.Reports[2], res.Reports[3]
	assert.False(t, first.Cached)
	assert.Len(t, first.Diagnostics, 1)
	assert.True(t, second.Cached)
	assert.Equal(t, "a > c", second.SameAs)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)

	assert.Equal(t, 1, res.ErrorCount)
	assert.Equal(t, 1, res.Stats.MemoHits)
	assert.Equal(t, 3, res.Stats.Analyzed)
	assert.NotEmpty(t, res.RunID)
}

func TestRunDeterministicAcrossJobs(t *testing.T) {
	records := diamondFixture(t)
	runner := NewRunner(nil, nil, quietLogger())

	sequential, err := runner.Run(context.Background(), records, Options{Jobs: 1})
	require.NoError(t, err)
	for range 5 {
		parallel, err := runner.Run(context.Background(), records, Options{Jobs: 8})
		require.NoError(t, err)
		assert.Equal(t, sequential.Reports, parallel.Reports)
	}
}

func TestRunCleanMemoHitHasNoSameAs(t *testing.T) {
	records := diamondFixture(t)
	runner := NewRunner(nil, nil, quietLogger())

	res, err := runner.Run(context.Background(), records, Options{
		Rules: []lint.Rule{},
	})
	require.NoError(t, err)
	last := res.Reports[len(res.Reports)-1]
	assert.True(t, last.Cached)
	assert.True(t, last.OK())
	assert.Empty(t, last.SameAs)
	assert.Zero(t, res.ErrorCount)
}

func TestRunIgnore(t *testing.T) {
	records := diamondFixture(t)
	runner := NewRunner(nil, nil, quietLogger())

	res, err := runner.Run(context.Background(), records, Options{Ignore: []string{"c"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, titles(res.Reports))
	assert.Equal(t, 2, res.Stats.Ignored)
}

func TestRunErrorLimit(t *testing.T) {
	records := diamondFixture(t)
	runner := NewRunner(nil, nil, quietLogger())

	res, err := runner.Run(context.Background(), records, Options{
		Rules:      []lint.Rule{mustLookup(t, lint.RuleNoSuspiciousDependencies)},
		ErrorLimit: 1,
	})
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, []string{"a", "b", "a > c"}, titles(res.Reports))
	assert.Equal(t, 1, res.ErrorCount)
}

func TestRunPersistentCache(t *testing.T) {
	records := diamondFixture(t)
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, quietLogger())

	var calls atomic.Int32
	opts := Options{Rules: []lint.Rule{countingRule(&calls)}}

	first, err := runner.Run(context.Background(), records, opts)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, first.Stats.CacheHits)

	second, err := runner.Run(context.Background(), records, opts)
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load(), "second run should be served from cache")
	assert.Equal(t, 3, second.Stats.CacheHits)
	assert.True(t, second.Reports[2].Persisted)
	assert.Equal(t, first.Reports[2].Diagnostics, second.Reports[2].Diagnostics)

	refreshed, err := runner.Run(context.Background(), records, Options{Rules: opts.Rules, Refresh: true})
	require.NoError(t, err)
	assert.EqualValues(t, 6, calls.Load())
	assert.Zero(t, refreshed.Stats.CacheHits)
}

func TestRunPersistentCacheTracksInstalledPeers(t *testing.T) {
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	nm := filepath.Join(root, "node_modules")
	writeManifest(t, root, `{"name": "root", "dependencies": {"app": "1"}}`)
	writeManifest(t, filepath.Join(nm, "app"),
		`{"name": "app", "version": "1.0.0", "dependencies": {"plugin": "^1.0.0", "react": "^18.0.0"}}`)
	require.NoError(t, os.WriteFile(filepath.Join(nm, "app", "index.js"), []byte(`require("plugin")`), 0644))
	writeManifest(t, filepath.Join(nm, "plugin"), `{"name": "plugin", "version": "1.0.0", "peerDependencies": {"react": "*"}}`)
	writeManifest(t, filepath.Join(nm, "react"), `{"name": "react", "version": "18.0.0"}`)

	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	runner := NewRunner(fc, nil, quietLogger())
	opts := Options{Rules: []lint.Rule{mustLookup(t, lint.RuleNoUnusedDependencies)}}
	rootManifest := filepath.Join(root, "package.json")

	appReport := func() Report {
		t.Helper()
		records, err := crawl.Crawl(context.Background(), rootManifest, crawl.Options{})
		require.NoError(t, err)
		res, err := runner.Run(context.Background(), records, opts)
		require.NoError(t, err)
		require.Equal(t, "app", res.Reports[0].Title)
		return res.Reports[0]
	}

	assert.True(t, appReport().OK(), "react is consumed as a peer of plugin")

	// Reinstalling plugin without the peer leaves react unused in app.
	writeManifest(t, filepath.Join(nm, "plugin"), `{"name": "plugin", "version": "1.1.0"}`)
	rep := appReport()
	assert.False(t, rep.Persisted)
	require.Len(t, rep.Diagnostics, 1)
	assert.Equal(t, "react", rep.Diagnostics[0].Dependency)

	assert.True(t, appReport().Persisted, "unchanged installs reuse the stored result")
}

func TestInstalledDependencies(t *testing.T) {
	root := t.TempDir()
	nm := filepath.Join(root, "node_modules")
	writeManifest(t, filepath.Join(nm, "a"), `{"name": "a", "version": "1.2.3"}`)
	writeManifest(t, filepath.Join(nm, "broken"), `{not json`)
	writeManifest(t, root, `{"dependencies": {"a": "1", "broken": "1", "missing": "1"}}`)

	m, err := manifest.Read(filepath.Join(root, "package.json"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a@1.2.3", "broken@?", "missing@-"}, installedDependencies(m, root))
}

func TestRunSkipsPersistenceOutsideNodeModules(t *testing.T) {
	assert.False(t, persistable(crawl.Record{Dir: "/work/packages/ui", Path: []string{"ui"}, Version: "1.0.0"}))
	assert.False(t, persistable(crawl.Record{Dir: "/app/node_modules/a", Path: []string{"a"}}))
	assert.True(t, persistable(crawl.Record{Dir: "/app/node_modules/a", Path: []string{"a"}, Version: "1.0.0"}))
}

func TestRunCanceled(t *testing.T) {
	records := diamondFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(nil, nil, quietLogger()).Run(ctx, records, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMissingManifestReportsError(t *testing.T) {
	records := []crawl.Record{{Dir: t.TempDir(), Path: []string{"gone"}, Version: "1.0.0"}}

	res, err := NewRunner(nil, nil, quietLogger()).Run(context.Background(), records, Options{})
	require.NoError(t, err)
	require.Len(t, res.Reports, 1)
	assert.NotEmpty(t, res.Reports[0].Error)
	assert.Equal(t, 1, res.ErrorCount)
}

func mustLookup(t *testing.T, id string) lint.Rule {
	t.Helper()
	r, ok := lint.Lookup(id)
	require.True(t, ok)
	return r
}

// =============================================================================
// Memo
// =============================================================================

func TestMemoClaim(t *testing.T) {
	m := NewMemo()
	e1, owner := m.Claim("a@1.0.0")
	require.True(t, owner)

	e2, owner := m.Claim("a@1.0.0")
	assert.False(t, owner)
	assert.Same(t, e1, e2)

	_, ok := m.Get("a@1.0.0")
	assert.False(t, ok, "pending entries are absent")

	e1.resolve(Outcome{Title: "x > a"})
	out, ok := m.Get("a@1.0.0")
	require.True(t, ok)
	assert.Equal(t, "x > a", out.Title)

	out, err := e2.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x > a", out.Title)
}

func TestMemoSetKeepsFirst(t *testing.T) {
	m := NewMemo()
	m.Set("k", Outcome{Title: "first"})
	m.Set("k", Outcome{Title: "second"})

	out, ok := m.Get("k")
	require.True(t, ok)
	assert.Equal(t, "first", out.Title)
	assert.Equal(t, 1, m.Len())
}

func TestMemoConcurrentClaimSingleOwner(t *testing.T) {
	m := NewMemo()
	var owners atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, owner := m.Claim("k"); owner {
				owners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, owners.Load())
}

func TestEntryWaitCanceled(t *testing.T) {
	e, _ := NewMemo().Claim("k")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// Duplicates
// =============================================================================

func TestFindDuplicates(t *testing.T) {
	rec := func(version string, path ...string) crawl.Record {
		return crawl.Record{Path: path, Version: version}
	}
	records := []crawl.Record{
		rec("1.10.0", "x"),
		rec("1.2.0", "y", "x"),
		rec("latest", "z", "x"),
		rec("1.2.0", "w", "x"),
		rec("3.0.0", "y"),
		rec("3.0.0", "x", "y"),
	}
	assert.Equal(t, []Duplicate{
		{Name: "x", Versions: []string{"1.2.0", "1.10.0", "latest"}},
	}, FindDuplicates(records))
}
