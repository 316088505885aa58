// Package lint implements renoma's package health rules.
//
// Each [Rule] is a pure check over one installed package: it receives the
// parsed manifest and the package directory and returns [Diagnostic]
// values. The rule set is fixed and listed in [Rules]; callers narrow it
// with a [Filter] rather than registering new rules at runtime.
//
// # Rules
//
//   - renoma/no-suspicious-dependencies: a runtime dependency whose
//     specifier points at a URL, a VCS remote or an npm alias.
//   - renoma/no-unused-dependencies: a runtime dependency that no source
//     file in the package mentions as a quoted module specifier.
//
// Usage detection is textual. A dependency counts as used when some source
// file contains its name in quotes, either whole ("lodash") or followed by a
// subpath ("lodash/merge"). This misses computed imports and can be fooled
// by matching strings in comments; both are accepted in exchange for not
// parsing every JavaScript dialect.
package lint
