package render

import (
	"io"
	"slices"
	"strings"

	"github.com/matzehuels/renoma/pkg/errors"
	"github.com/matzehuels/renoma/pkg/scan"
)

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatSARIF = "sarif"
)

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatSARIF}

// Options configures rendering.
type Options struct {
	// Root is the analyzed project directory. SARIF locations are made
	// relative to it.
	Root string
	// Summary appends run statistics and duplicate versions to text output.
	Summary bool
}

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat,
			"unknown format %q (want one of %s)", s, strings.Join(Formats, ", "))
	}
	return f, nil
}

// Write renders res to w in the given format.
func Write(w io.Writer, format string, res *scan.Result, opts Options) error {
	switch format {
	case FormatText:
		return Text(w, res, opts)
	case FormatJSON:
		return JSON(w, res)
	case FormatSARIF:
		return SARIF(w, res, opts.Root)
	default:
		_, err := ParseFormat(format)
		return err
	}
}
