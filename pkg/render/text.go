package render

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/renoma/pkg/manifest"
	"github.com/matzehuels/renoma/pkg/scan"
)

const (
	msgClean    = "✔ No linting errors!"
	msgSameAs   = "✖ Has lint errors same as %s"
	msgLimit    = "Exiting as reached %d error limit"
	severityTag = "warning"
	errorTag    = "error"
)

type textStyles struct {
	title, ok, bad, dim, warn lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	return textStyles{
		title: r.NewStyle().Bold(true),
		ok:    r.NewStyle().Foreground(lipgloss.Color("35")),
		bad:   r.NewStyle().Foreground(lipgloss.Color("167")),
		dim:   r.NewStyle().Foreground(lipgloss.Color("240")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

// Text writes one block per report: the bold graph path, then either the
// clean marker, a pointer to the first path with the same issues, or the
// diagnostics. Styling is dropped when w is not a terminal.
func Text(w io.Writer, res *scan.Result, opts Options) error {
	st := newTextStyles(w)
	var b strings.Builder

	for _, rep := range res.Reports {
		b.WriteString(st.title.Render(rep.Title+":") + "\n")
		switch {
		case rep.OK():
			b.WriteString(st.ok.Render(msgClean) + "\n\n")
		case rep.SameAs != "":
			b.WriteString(st.bad.Render(fmt.Sprintf(msgSameAs, rep.SameAs)) + "\n\n")
		default:
			writeDiagnostics(&b, st, rep)
		}
	}
	if res.Truncated {
		fmt.Fprintf(&b, msgLimit+"\n", res.ErrorCount)
	}
	if opts.Summary {
		writeSummary(&b, st, res)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeDiagnostics(b *strings.Builder, st textStyles, rep scan.Report) {
	b.WriteString(st.dim.Render(filepath.Join(rep.Dir, manifest.FileName)) + "\n")
	if rep.Error != "" {
		fmt.Fprintf(b, "  %s  %s\n", st.bad.Render(errorTag), rep.Error)
	}
	for _, d := range rep.Diagnostics {
		fmt.Fprintf(b, "  %s  %s  %s\n", st.warn.Render(severityTag), d.Message, st.dim.Render(d.Rule))
	}
	n := len(rep.Diagnostics)
	if rep.Error != "" {
		n++
	}
	b.WriteString("\n" + st.bad.Render(fmt.Sprintf("✖ %d %s", n, plural(n, "problem"))) + "\n\n")
}

func writeSummary(b *strings.Builder, st textStyles, res *scan.Result) {
	s := res.Stats
	fmt.Fprintf(b, "%s %d packages, %d analyzed, %d reused, %d from cache, %d ignored in %s\n",
		st.title.Render("Summary:"), s.Records, s.Analyzed, s.MemoHits, s.CacheHits, s.Ignored, s.Duration.Round(time.Millisecond))
	if res.ErrorCount > 0 {
		b.WriteString(st.bad.Render(fmt.Sprintf("✖ %d %s with lint errors", res.ErrorCount, plural(res.ErrorCount, "package"))) + "\n")
	} else {
		b.WriteString(st.ok.Render(msgClean) + "\n")
	}
	if len(res.Duplicates) == 0 {
		return
	}
	b.WriteString("\n" + st.title.Render("Installed at several versions:") + "\n")
	for _, d := range res.Duplicates {
		fmt.Fprintf(b, "  %s  %s\n", d.Name, st.dim.Render(strings.Join(d.Versions, ", ")))
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
