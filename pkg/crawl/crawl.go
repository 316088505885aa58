// Package crawl walks the installed dependency graph of a package.
//
// The crawl is breadth-first over node_modules: the root's dependencies
// (runtime, then development) come first in declaration order, then each
// discovered package's runtime dependencies in discovery order. A package
// already present on the path that led to it is skipped, so circular
// dependency graphs terminate. Dependencies that are not installed are
// skipped silently.
//
// The output order is part of the contract: when [Options.Limit] truncates
// the crawl, the result is always a prefix of the unbounded crawl.
package crawl

import (
	"context"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/renoma/pkg/errors"
	"github.com/matzehuels/renoma/pkg/locate"
	"github.com/matzehuels/renoma/pkg/manifest"
	"github.com/matzehuels/renoma/pkg/observability"
)

// PathSeparator joins graph path names into a display title.
const PathSeparator = " > "

// Record is one reachable package in the dependency graph.
type Record struct {
	// Dir is the absolute, symlink-resolved install directory.
	Dir string `json:"dir"`
	// Path lists package names from the root (exclusive) to this package
	// (inclusive). It describes how the package was reached, not which
	// package it is: the same install may appear under several paths.
	Path []string `json:"path"`
	// Version is the installed manifest's version.
	Version string `json:"version"`
}

// Name returns the package name, the last element of Path.
func (r Record) Name() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}

// Depth is the distance from the root package.
func (r Record) Depth() int { return len(r.Path) }

// Title renders the graph path, e.g. "vite > rollup > fsevents".
func (r Record) Title() string { return strings.Join(r.Path, PathSeparator) }

// Key identifies the installed package as name@version.
func (r Record) Key() string { return r.Name() + "@" + r.Version }

// Options configures a crawl.
type Options struct {
	// Limit caps the number of records produced. Zero means unbounded.
	Limit int
	// Logger receives notes about skipped packages (optional).
	Logger func(string, ...any)
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = func(string, ...any) {}
	}
	if o.Limit < 0 {
		o.Limit = 0
	}
	return o
}

// Crawl expands the dependency graph rooted at rootManifest.
//
// The root manifest must exist and parse; any other manifest that is
// missing or malformed only removes that package from the graph.
func Crawl(ctx context.Context, rootManifest string, opts Options) ([]Record, error) {
	rootPath, err := filepath.Abs(rootManifest)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", rootManifest)
	}
	root, err := manifest.Read(rootPath)
	if err != nil {
		return nil, err
	}

	c := &crawler{opts: opts.withDefaults()}
	seed := make(manifest.Dependencies, 0, len(root.Dependencies)+len(root.DevDependencies))
	seed = append(seed, root.Dependencies...)
	seed = append(seed, root.DevDependencies...)

	if !c.expand(root.Dir(), nil, seed) {
		for i := 0; i < len(c.records); i++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			rec := c.records[i]
			m, err := manifest.Read(filepath.Join(rec.Dir, manifest.FileName))
			if err != nil {
				c.opts.Logger("skip %s: %v", rec.Title(), err)
				continue
			}
			if c.expand(rec.Dir, rec.Path, m.Dependencies) {
				break
			}
		}
	}

	observability.Scan().OnCrawlComplete(ctx, rootPath, len(c.records))
	return c.records, nil
}

type crawler struct {
	opts    Options
	records []Record
}

// expand emits a record for every resolvable dependency of the package at
// dir. It reports true once the limit is reached.
func (c *crawler) expand(dir string, parent []string, deps manifest.Dependencies) bool {
	for _, dep := range deps {
		if slices.Contains(parent, dep.Name) {
			continue
		}

		depManifest, ok := locate.FindInstalledManifest(dep.Name, dir)
		if !ok {
			continue
		}
		m, err := manifest.Read(depManifest)
		if err != nil {
			c.opts.Logger("skip %s: %v", dep.Name, err)
			continue
		}

		name := m.Name
		if name == "" {
			name = dep.Name
		}
		// Aliased installs can resolve to an ancestor under another name.
		if name != dep.Name && slices.Contains(parent, name) {
			continue
		}
		path := make([]string, len(parent), len(parent)+1)
		copy(path, parent)
		path = append(path, name)

		c.records = append(c.records, Record{
			Dir:     filepath.Dir(depManifest),
			Path:    path,
			Version: m.Version,
		})

		if c.opts.Limit > 0 && len(c.records) >= c.opts.Limit {
			return true
		}
	}
	return false
}
