package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/renoma/pkg/crawl"
	"github.com/matzehuels/renoma/pkg/errors"
	"github.com/matzehuels/renoma/pkg/manifest"
	"github.com/matzehuels/renoma/pkg/render/nodelink"
)

const (
	graphFormatDOT = "dot"
	graphFormatSVG = "svg"
)

// graphCommand draws the crawled dependency graph.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format    string
		output    string
		limit     int
		detailed  bool
		highlight bool
		backend   string
	)
	cmd := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Draw the installed dependency graph",
		Long: `Graph crawls the installed dependencies like check does and writes them as a
Graphviz diagram, one node per name@version. With --highlight, packages with
lint errors are drawn in red.`,
		Example: `  renoma graph -o deps.dot
  renoma graph --format svg --highlight -o deps.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if format != graphFormatDOT && format != graphFormatSVG {
				return errors.New(errors.ErrCodeInvalidFormat, "unknown graph format %q (want dot or svg)", format)
			}
			run, err := c.prepare(cmd, dirArg(args), nil)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				run.cfg.Limit = limit
			}
			if cmd.Flags().Changed("cache") {
				run.cfg.Cache = backend
			}
			if err := run.cfg.validate(); err != nil {
				return err
			}

			opts := nodelink.Options{Detailed: detailed, Root: filepath.Base(run.projectDir)}
			if m, err := manifest.Read(run.rootManifest); err == nil && m.Name != "" {
				opts.Root = m.Name
			}

			var records []crawl.Record
			if highlight {
				out, err := c.scan(ctx, run, false)
				if err != nil {
					return err
				}
				records = out.records
				opts.Flagged = make(map[string]bool)
				for _, rep := range out.result.Reports {
					if !rep.OK() {
						opts.Flagged[rep.Name+"@"+rep.Version] = true
					}
				}
			} else {
				records, err = crawl.Crawl(ctx, run.rootManifest, crawl.Options{Limit: run.cfg.Limit, Logger: c.Logger.Debugf})
				if err != nil {
					return err
				}
			}

			data := []byte(nodelink.ToDOT(records, opts))
			if format == graphFormatSVG {
				if data, err = nodelink.RenderSVG(ctx, string(data)); err != nil {
					return err
				}
			}

			w, closeOut, err := c.outputWriter(output)
			if err != nil {
				return err
			}
			if _, err := w.Write(data); err != nil {
				closeOut()
				return err
			}
			if err := closeOut(); err != nil {
				return err
			}
			if output != "" {
				printFile(cmd.ErrOrStderr(), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", graphFormatDOT, "output format: dot, svg")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of packages to crawl (0 = all)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include install directories in node labels")
	cmd.Flags().BoolVar(&highlight, "highlight", false, "lint packages and highlight those with errors")
	cmd.Flags().StringVar(&backend, "cache", "", "result cache backend for --highlight: none, file, redis")
	return cmd
}
