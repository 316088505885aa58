package lint

import (
	"regexp"
	"slices"
	"strings"

	"github.com/matzehuels/renoma/pkg/errors"
)

// Filter selects rules by id. An entry is either an exact id or a regular
// expression wrapped in slashes ("/^renoma\//"). A rule is selected when any
// entry matches it. A nil Filter selects every rule.
type Filter []matcher

type matcher struct {
	exact string
	re    *regexp.Regexp
}

func (m matcher) match(id string) bool {
	if m.re != nil {
		return m.re.MatchString(id)
	}
	return m.exact == id
}

// ParseFilter compiles filter entries. Empty entries are ignored; an empty
// entry list yields a nil Filter.
func ParseFilter(entries []string) (Filter, error) {
	var f Filter
	for _, raw := range entries {
		entry := strings.TrimSpace(raw)
		if entry == "" {
			continue
		}
		if len(entry) >= 2 && strings.HasPrefix(entry, "/") && strings.HasSuffix(entry, "/") {
			re, err := regexp.Compile(entry[1 : len(entry)-1])
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidRule, err, "invalid rule pattern %q", entry)
			}
			f = append(f, matcher{re: re})
			continue
		}
		f = append(f, matcher{exact: entry})
	}
	return f, nil
}

// Includes reports whether the filter selects id.
func (f Filter) Includes(id string) bool {
	if f == nil {
		return true
	}
	return slices.ContainsFunc(f, func(m matcher) bool { return m.match(id) })
}

// Select returns the rules the filter includes, in evaluation order.
func (f Filter) Select() []Rule {
	var out []Rule
	for _, r := range Rules {
		if f.Includes(r.ID) {
			out = append(out, r)
		}
	}
	return out
}

// IDs returns the sorted ids of the selected rules.
func (f Filter) IDs() []string {
	var ids []string
	for _, r := range f.Select() {
		ids = append(ids, r.ID)
	}
	slices.Sort(ids)
	return ids
}
