package scan

import (
	"cmp"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/renoma/pkg/crawl"
	"github.com/matzehuels/renoma/pkg/lint"
)

// Report is the outcome for one crawled record.
type Report struct {
	Title       string            `json:"title"`
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Dir         string            `json:"dir"`
	Depth       int               `json:"depth"`
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	// SameAs is the first graph path with the same name@version, set when
	// this record reused that path's issues.
	SameAs string `json:"same_as,omitempty"`
	// Cached is set when the outcome was taken from an earlier record.
	Cached bool `json:"cached"`
	// Persisted is set when the outcome was read from the result cache.
	Persisted bool   `json:"persisted"`
	Error     string `json:"error,omitempty"`
}

// OK reports whether the record is clean.
func (r Report) OK() bool { return len(r.Diagnostics) == 0 && r.Error == "" }

func newReport(rec crawl.Record, out Outcome, cached bool) Report {
	rep := Report{
		Title:       rec.Title(),
		Name:        rec.Name(),
		Version:     rec.Version,
		Dir:         rec.Dir,
		Depth:       rec.Depth(),
		Diagnostics: out.Diagnostics,
		Cached:      cached,
		Persisted:   out.Persisted,
	}
	if out.Err != nil {
		rep.Error = out.Err.Error()
	}
	if cached && out.HasIssues() {
		rep.SameAs = out.Title
	}
	return rep
}

// Stats summarizes a run.
type Stats struct {
	Records   int           `json:"records"`
	Ignored   int           `json:"ignored"`
	Analyzed  int           `json:"analyzed"`
	MemoHits  int           `json:"memo_hits"`
	CacheHits int           `json:"cache_hits"`
	Duration  time.Duration `json:"duration"`
}

// Duplicate is a package installed at more than one version.
type Duplicate struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

// Result is the outcome of a run.
type Result struct {
	RunID   string   `json:"run_id"`
	Reports []Report `json:"reports"`
	// ErrorCount counts first-occurrence records with issues. Records that
	// reuse an earlier outcome are not counted again.
	ErrorCount int `json:"error_count"`
	// Truncated is set when the error limit stopped the run early.
	Truncated  bool        `json:"truncated"`
	Stats      Stats       `json:"stats"`
	Duplicates []Duplicate `json:"duplicates,omitempty"`
}

// FindDuplicates groups records by package name and returns the names seen
// at more than one version, ordered by name. Versions ascend by semver;
// strings that do not parse come last in lexical order.
func FindDuplicates(records []crawl.Record) []Duplicate {
	byName := make(map[string][]string)
	for _, rec := range records {
		name := rec.Name()
		if !slices.Contains(byName[name], rec.Version) {
			byName[name] = append(byName[name], rec.Version)
		}
	}

	var out []Duplicate
	for name, versions := range byName {
		if len(versions) < 2 {
			continue
		}
		slices.SortFunc(versions, compareVersions)
		out = append(out, Duplicate{Name: name, Versions: versions})
	}
	slices.SortFunc(out, func(a, b Duplicate) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

func compareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
