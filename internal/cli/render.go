package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/stepgraph/pkg/errors"
	"github.com/matzehuels/stepgraph/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string  // output file (single format) or base path (multiple)
	vizType  string  // "chart" or "nodelink"
	formats  string  // comma-separated formats
	detailed bool    // step type and doc in node-link labels
	tooltips bool    // step docs as SVG <title> elements
	ports    bool    // port markers in chart SVGs
	scale    float64 // PNG scale factor
	noCache  bool
	refresh  bool
	sizes    layoutFlags
}

// renderCommand creates the render command for producing diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var ro renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Render a step graph to SVG, PNG, PDF, DOT or chart JSON",
		Long: `Render a step graph to SVG, PNG, PDF, DOT or chart JSON.

Two visualization types are available:
  chart     nested boxes at the computed layout positions (default)
  nodelink  a Graphviz diagram with one cluster per container

Files are named after the input (or --output) with the format as extension;
chart JSON is written as <name>.chart.json.
PNG and PDF for charts need rsvg-convert on PATH.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.pipelineDefaults()
			ro.sizes.apply(cmd.Flags(), &opts)
			opts.VizType = strings.ToLower(ro.vizType)
			opts.Formats = parseFormats(ro.formats)
			opts.Detailed = ro.detailed
			opts.Tooltips = ro.tooltips
			opts.Ports = ro.ports
			opts.Scale = ro.scale
			opts.Refresh = ro.refresh
			if err := opts.ValidateForRender(); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], ro, opts)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.vizType, "type", "t", pipeline.DefaultVizType, "visualization type: chart, nodelink")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): svg (default), json, dot, png, pdf (comma-separated)")
	cmd.Flags().BoolVar(&ro.detailed, "detailed", false, "show step type and doc (nodelink)")
	cmd.Flags().BoolVar(&ro.tooltips, "tooltips", false, "add step docs as hover tooltips (chart)")
	cmd.Flags().BoolVar(&ro.ports, "ports", false, "draw port markers (chart)")
	cmd.Flags().Float64Var(&ro.scale, "scale", pipeline.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.refresh, "refresh", false, "recompute even if cached")
	ro.sizes.register(cmd.Flags())

	return cmd
}

// runRender runs the pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, input string, ro renderOpts, opts pipeline.Options) error {
	payload, err := readPayload(input)
	if err != nil {
		return err
	}

	paths := outputPaths(input, ro.output, opts.Formats)
	for _, p := range paths {
		if err := apperrors.ValidateOutputPath(p); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spin := newSpinner(ctx, c.Err, fmt.Sprintf("Rendering %s...", opts.VizType))
	spin.Start()
	result, err := runner.Execute(ctx, payload, opts)
	if err != nil {
		spin.StopWithError("Render failed")
		return err
	}
	spin.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if dir := filepath.Dir(paths[opts.Formats[0]]); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	printSuccess(c.Out, "Rendered %s", opts.VizType)
	for _, format := range opts.Formats {
		path := paths[format]
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(c.Out, path)
	}
	printStats(c.Out, result.Stats, result.CacheInfo.ChartHit && result.CacheInfo.RenderHit)
	return nil
}

// outputPaths maps each format to the file it is written to. A single format
// with an explicit output path uses that path verbatim. Chart JSON is named
// <base>.chart.json so it never replaces the input graph.
func outputPaths(input, output string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := outputBase(input, output)
	for _, f := range formats {
		if f == pipeline.FormatJSON {
			paths[f] = base + ".chart.json"
			continue
		}
		paths[f] = base + "." + f
	}
	return paths
}
