package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/render/pie"
	"github.com/matzehuels/optima/pkg/render/pie/layout"
)

// pieOpts holds the command-line flags for the pie command.
type pieOpts struct {
	output  string
	formats []string
	input   string // input format: csv or json, detected from the file name by default
	title   string
	palette []string
	width   float64
	height  float64
	scale   float64
	noCache bool
	refresh bool
}

// pieCommand creates the pie command.
func (c *CLI) pieCommand() *cobra.Command {
	var opts pieOpts
	var formatsStr string

	cmd := &cobra.Command{
		Use:   "pie <file|->",
		Short: "Render a pie chart with non-overlapping labels",
		Long: `Render a pie chart from CSV ("label,value" lines) or JSON data.

Labels sit outside the pie, connected to their wedge by a leader line, and
are pushed apart vertically until no two on the same side overlap. Layout
and rendered files are cached.`,
		Example: `  optima pie spending.csv
  optima pie -f svg,png -o spending spending.json
  cat data.csv | optima pie - -o chart.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pie.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runPie(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), json, pdf, png (comma-separated)")
	cmd.Flags().StringVar(&opts.input, "input", "", "input format: csv or json (default from file extension)")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title")
	cmd.Flags().StringSliceVar(&opts.palette, "palette", nil, "wedge colors (comma-separated)")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", pie.DefaultScale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached results")

	return cmd
}

func (c *CLI) runPie(ctx context.Context, input string, opts pieOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	slices, err := readSlices(input, opts.input)
	if err != nil {
		return err
	}
	logger.Debug("loaded slices", "input", input, "count", len(slices))

	cfg, err := c.config()
	if err != nil {
		return err
	}
	if opts.width == 0 {
		opts.width = cfg.Layout.Width
	}
	if opts.height == 0 {
		opts.height = cfg.Layout.Height
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, pie.Options{
		Slices:  slices,
		Width:   opts.width,
		Height:  opts.height,
		Layout:  cfg.LayoutOptions(),
		Formats: opts.formats,
		Title:   opts.title,
		Palette: opts.palette,
		Scale:   opts.scale,
		Refresh: opts.refresh,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if err := writeArtifacts(res.Artifacts, opts.formats, input, opts.output); err != nil {
		return err
	}
	printLayoutStats(len(slices), res.Chart.Relaxation.Iterations, res.Chart.Relaxation.Converged, res.CacheInfo.ChartHit && res.CacheInfo.RenderHit)
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(res.Artifacts)))
	return nil
}

// readSlices reads pie data from a file, or stdin for "-".
func readSlices(input, format string) ([]layout.Slice, error) {
	if format == "" {
		format = pie.DetectInput(input)
	}
	if input == "-" {
		return pie.ReadSlices(os.Stdin, format)
	}
	f, err := os.Open(input)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", input)
		}
		return nil, err
	}
	defer f.Close()
	return pie.ReadSlices(io.LimitReader(f, 64<<20), format)
}

// parseFormats parses the --format flag into a slice of output formats.
// If empty, defaults to ["svg"].
func parseFormats(s string) []string {
	if s == "" {
		return []string{pie.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input; stdin becomes
// "pie". A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		if input == "-" {
			return "pie"
		}
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pie.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes one file per format. A single format with an
// explicit output path is written to that path unchanged.
func writeArtifacts(artifacts map[string][]byte, formats []string, input, output string) error {
	base := basePath(output, input)
	for _, format := range formats {
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}
