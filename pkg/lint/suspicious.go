package lint

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/renoma/pkg/manifest"
)

// localProtocols are specifier prefixes for trusted local references.
var localProtocols = []string{"workspace:", "file:", "link:"}

// IsSuspicious reports whether a version specifier resolves outside the
// registry. Registry ranges and dist-tags never contain '/' or ':'; URLs,
// git remotes, GitHub shorthands and npm: aliases do.
func IsSuspicious(spec string) bool {
	if !strings.ContainsAny(spec, "/:") {
		return false
	}
	for _, p := range localProtocols {
		if strings.HasPrefix(spec, p) {
			return false
		}
	}
	return true
}

// FindSuspicious returns a diagnostic for every suspicious runtime
// dependency, in declaration order.
func FindSuspicious(deps manifest.Dependencies) []Diagnostic {
	var out []Diagnostic
	for _, dep := range deps {
		if !IsSuspicious(dep.Spec) {
			continue
		}
		out = append(out, Diagnostic{
			Rule:       RuleNoSuspiciousDependencies,
			Kind:       KindSuspicious,
			Dependency: dep.Name,
			Specifier:  dep.Spec,
			Message:    fmt.Sprintf("Suspicious dependency %q: %q found", dep.Name, dep.Spec),
		})
	}
	return out
}

func checkSuspicious(_ context.Context, t Target) ([]Diagnostic, error) {
	return FindSuspicious(t.Manifest.Dependencies), nil
}
