// Package render formats scan results.
//
// # Formats
//
//   - [Text]: per-package blocks for terminals, colored when w is a TTY
//   - [JSON]: the full [scan.Result], indented
//   - [SARIF]: SARIF 2.1.0 for code-scanning uploads
//
// The [nodelink] subpackage draws the crawled dependency graph.
//
// # Usage
//
//	result, err := runner.Run(ctx, records, opts)
//	if err := render.Write(os.Stdout, render.FormatText, result, render.Options{}); err != nil {
//	    return err
//	}
package render
