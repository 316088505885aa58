// Package nodelink draws the crawled dependency graph as a node-link
// diagram.
//
// Each installed package (name@version) is one node, however many graph
// paths reach it; each crawl step is one edge. Packages with lint issues
// can be highlighted.
//
//	dot := nodelink.ToDOT(records, nodelink.Options{Root: "my-app"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// SVG rendering runs Graphviz in-process via [github.com/goccy/go-graphviz].
package nodelink
