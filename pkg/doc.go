// Package pkg provides the core libraries for renoma, a recursive
// node_modules analyzer.
//
// # Overview
//
// renoma starts at the nearest package.json, walks the installed dependency
// graph breadth-first and lints every package it reaches. The libraries are
// organized along that flow:
//
//	package.json
//	     ↓
//	[locate] + [manifest] (find and read installed packages)
//	     ↓
//	[crawl] (breadth-first dependency records)
//	     ↓
//	[scan] + [lint] (analyze each name@version once, memoized and cached)
//	     ↓
//	[render] (text, JSON, SARIF, Graphviz)
//
// # Quick Start
//
//	records, _ := crawl.Crawl(ctx, "package.json", crawl.Options{})
//	runner := scan.NewRunner(cache.NewNullCache(), nil, nil)
//	res, _ := runner.Run(ctx, records, scan.Options{})
//	_ = render.Write(os.Stdout, render.FormatText, res, render.Options{})
//
// # Main Packages
//
// [locate] - Node-style resolution of installed packages: nearest
// node_modules ancestor first, then the package's own node_modules.
//
// [manifest] - Order-preserving package.json reading.
//
// [crawl] - Breadth-first traversal of runtime dependencies with cycle
// protection along each path.
//
// [lint] - The rules: suspicious (non-registry) dependency specifiers and
// dependencies no source file references.
//
// [scan] - Runs the rules over crawl records with per-run memoization, a
// persistent [cache] and an error limit.
//
// [cache] - Persistent result storage on disk or in Redis.
//
// [render] - Report output. [render/nodelink] draws the crawled graph.
//
// [errors] - Structured error codes shared by the CLI.
//
// [locate]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/locate
// [manifest]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/manifest
// [crawl]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/crawl
// [lint]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/lint
// [scan]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/scan
// [cache]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/cache
// [render]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/render/nodelink
// [errors]: https://pkg.go.dev/github.com/matzehuels/renoma/pkg/errors
package pkg
