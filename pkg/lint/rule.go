package lint

import (
	"context"
	"slices"

	"github.com/matzehuels/renoma/pkg/manifest"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindSuspicious Kind = "suspicious-dependency"
	KindUnused     Kind = "unused-dependency"
)

// Diagnostic is one finding for one declared dependency.
type Diagnostic struct {
	Rule       string `json:"rule"`
	Kind       Kind   `json:"kind"`
	Dependency string `json:"dependency"`
	Specifier  string `json:"specifier,omitempty"`
	Message    string `json:"message"`
}

// Target is the package a rule inspects.
type Target struct {
	Manifest *manifest.Manifest
	// Dir is the package root. Unused-dependency detection scans it.
	Dir string
	// Extensions overrides [DefaultExtensions] for the usage scan.
	Extensions []string
}

func (t Target) extensions() []string {
	if len(t.Extensions) == 0 {
		return DefaultExtensions
	}
	return t.Extensions
}

// Rule is one health check.
type Rule struct {
	ID          string
	Kind        Kind
	Description string
	Check       func(ctx context.Context, t Target) ([]Diagnostic, error)
}

// Rule identifiers.
const (
	RuleNoSuspiciousDependencies = "renoma/no-suspicious-dependencies"
	RuleNoUnusedDependencies     = "renoma/no-unused-dependencies"
)

// Rules lists every rule in evaluation order.
var Rules = []Rule{
	{
		ID:          RuleNoSuspiciousDependencies,
		Kind:        KindSuspicious,
		Description: "Disallow any suspicious dependencies, e.g. from external URLs",
		Check:       checkSuspicious,
	},
	{
		ID:          RuleNoUnusedDependencies,
		Kind:        KindUnused,
		Description: "Disallow any unused dependencies",
		Check:       checkUnused,
	},
}

// Lookup returns the rule with the given id.
func Lookup(id string) (Rule, bool) {
	i := slices.IndexFunc(Rules, func(r Rule) bool { return r.ID == id })
	if i < 0 {
		return Rule{}, false
	}
	return Rules[i], true
}

// Run evaluates rules against t in order and concatenates their findings.
// The first rule error stops evaluation.
func Run(ctx context.Context, rules []Rule, t Target) ([]Diagnostic, error) {
	var out []Diagnostic
	for _, r := range rules {
		diags, err := r.Check(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, diags...)
	}
	return out, nil
}
