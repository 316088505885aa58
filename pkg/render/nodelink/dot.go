package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/renoma/pkg/crawl"
)

// Options configures diagram generation.
type Options struct {
	// Root labels the root node. Defaults to "root".
	Root string
	// Detailed adds the install directory to node labels.
	Detailed bool
	// Flagged holds name@version keys drawn highlighted.
	Flagged map[string]bool
}

const rootID = "(root)"

// ToDOT converts crawl records to Graphviz DOT. Nodes appear in first
// discovery order and edges in crawl order, so equal input gives equal
// output.
func ToDOT(records []crawl.Record, opts Options) string {
	root := opts.Root
	if root == "" {
		root = "root"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  %q [label=%q, style=\"rounded,filled,bold\"];\n", rootID, root)

	// Records carry the names on their path but not the versions, so the
	// parent node is found through the title it was emitted under.
	keyByTitle := map[string]string{"": rootID}
	seen := map[string]bool{}
	type edge struct{ from, to string }
	var edges []edge
	seenEdge := map[edge]bool{}

	for _, rec := range records {
		key := rec.Key()
		keyByTitle[rec.Title()] = key
		if !seen[key] {
			seen[key] = true
			fmt.Fprintf(&buf, "  %q [%s];\n", key, strings.Join(fmtAttrs(rec, opts), ", "))
		}
		parent, ok := keyByTitle[strings.Join(rec.Path[:len(rec.Path)-1], crawl.PathSeparator)]
		if !ok {
			continue
		}
		e := edge{parent, key}
		if !seenEdge[e] {
			seenEdge[e] = true
			edges = append(edges, e)
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.from, e.to)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(rec crawl.Record, opts Options) []string {
	label := rec.Key()
	if opts.Detailed {
		label += "\n" + rec.Dir
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if opts.Flagged[rec.Key()] {
		attrs = append(attrs, "fillcolor=mistyrose", "color=firebrick")
	}
	return attrs
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based size attributes so the
// SVG scales with its container.
func normalizeViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
