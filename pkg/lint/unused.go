package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/renoma/pkg/locate"
	"github.com/matzehuels/renoma/pkg/manifest"
)

// DefaultExtensions are the source file types searched for dependency
// references: code and stylesheets, which pull packages in through @import.
var DefaultExtensions = []string{
	".js", ".ts", ".jsx", ".tsx", ".svelte", ".vue",
	".css", ".scss", ".sass", ".less",
}

// typesScope is the DefinitelyTyped scope. "@types/foo__bar" types the
// package "@foo/bar".
const typesScope = "@types/"

// quotes that can open a module specifier.
var quotes = []string{`"`, `'`, "`"}

// NormalizePeerName maps a type-declaration package to the runtime package
// it describes: "@types/react" becomes "react" and "@types/babel__core"
// becomes "@babel/core". Other names are returned unchanged.
func NormalizePeerName(name string) string {
	rest, ok := strings.CutPrefix(name, typesScope)
	if !ok || rest == "" {
		return name
	}
	if scope, pkg, found := strings.Cut(rest, "__"); found {
		return "@" + scope + "/" + pkg
	}
	return rest
}

// FindUnused returns the runtime dependencies of m that nothing under dir
// references, in declaration order.
//
// Dependencies that another declared dependency lists as a peer are exempt:
// the peer is consumed by that dependency, not by this package's own code.
// The remaining names are searched for in every file under dir with one of
// exts, skipping node_modules directories. Unreadable files and directories
// are treated as containing no references.
func FindUnused(ctx context.Context, m *manifest.Manifest, dir string, exts []string) ([]string, error) {
	pending := newDependencySet(m.Dependencies.Names())
	if pending.empty() {
		return nil, nil
	}

	exemptPeers(pending, m.Dependencies, dir)
	if !pending.empty() {
		if err := scanUsage(ctx, pending, dir, exts); err != nil {
			return nil, err
		}
	}
	return pending.remaining(), nil
}

// exemptPeers removes the peer dependencies of every declared dependency.
// A dependency that is not installed or has an unreadable manifest exempts
// nothing.
func exemptPeers(pending *dependencySet, deps manifest.Dependencies, dir string) {
	for _, dep := range deps {
		path, ok := locate.FindInstalledManifest(dep.Name, dir)
		if !ok {
			continue
		}
		depManifest, err := manifest.Read(path)
		if err != nil {
			continue
		}
		for _, peer := range depManifest.PeerDependencies {
			pending.remove(NormalizePeerName(peer.Name))
		}
		if pending.empty() {
			return
		}
	}
}

// scanUsage walks dir breadth-first and removes every name some file
// references. It returns early once nothing is pending.
func scanUsage(ctx context.Context, pending *dependencySet, dir string, exts []string) error {
	queue := []string{dir}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		current := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(current)
		if err != nil {
			continue
		}
		for _, e := range entries {
			path := filepath.Join(current, e.Name())
			switch {
			case e.IsDir():
				if e.Name() != locate.InstallDir {
					queue = append(queue, path)
				}
			case e.Type().IsRegular():
				if !slices.Contains(exts, filepath.Ext(e.Name())) {
					continue
				}
				content, err := os.ReadFile(path)
				if err != nil {
					continue
				}
				pending.removeReferenced(string(content))
				if pending.empty() {
					return nil
				}
			}
		}
	}
	return nil
}

// References reports whether content mentions name as a quoted module
// specifier, whole or with a subpath.
func References(content, name string) bool {
	for _, q := range quotes {
		if strings.Contains(content, q+name+q) || strings.Contains(content, q+name+"/") {
			return true
		}
	}
	return false
}

func checkUnused(ctx context.Context, t Target) ([]Diagnostic, error) {
	names, err := FindUnused(ctx, t.Manifest, t.Dir, t.extensions())
	if err != nil {
		return nil, err
	}
	out := make([]Diagnostic, 0, len(names))
	for _, name := range names {
		spec, _ := t.Manifest.Dependencies.Get(name)
		out = append(out, Diagnostic{
			Rule:       RuleNoUnusedDependencies,
			Kind:       KindUnused,
			Dependency: name,
			Specifier:  spec,
			Message:    fmt.Sprintf("Unused dependency %q found", name),
		})
	}
	return out, nil
}

// dependencySet holds names not yet proven used, remembering declaration
// order for reporting.
type dependencySet struct {
	order   []string
	pending map[string]struct{}
}

func newDependencySet(names []string) *dependencySet {
	s := &dependencySet{pending: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, dup := s.pending[n]; dup {
			continue
		}
		s.pending[n] = struct{}{}
		s.order = append(s.order, n)
	}
	return s
}

func (s *dependencySet) empty() bool { return len(s.pending) == 0 }

func (s *dependencySet) remove(name string) { delete(s.pending, name) }

func (s *dependencySet) removeReferenced(content string) {
	for name := range s.pending {
		if References(content, name) {
			delete(s.pending, name)
		}
	}
}

func (s *dependencySet) remaining() []string {
	var out []string
	for _, n := range s.order {
		if _, ok := s.pending[n]; ok {
			out = append(out, n)
		}
	}
	return out
}
