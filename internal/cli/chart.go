package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/render/series"
)

// chartKindBar selects a stacked bar chart.
const chartKindBar = "bar"

// chartCommand creates the chart command.
func (c *CLI) chartCommand() *cobra.Command {
	var (
		output string
		opts   series.Options
	)

	cmd := &cobra.Command{
		Use:   "chart <line|area|scatter|bar> <file.csv>",
		Short: "Render a series or stacked bar chart",
		Long: `Render a chart from a CSV table.

For line, area and scatter charts the first column is x and every other
column is a series named by the header. For bar charts each row is a bar
and the header names the stacked segments.`,
		Example: `  optima chart line incidence.csv -o incidence.svg
  optima chart bar spending.csv -o spending.png`,
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(series.KindLine), string(series.KindArea), string(series.KindScatter), chartKindBar},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runChart(cmd.Context(), args[0], args[1], output, opts)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; .png selects PNG (default <input>.svg)")
	cmd.Flags().StringVar(&opts.Title, "title", "", "chart title")
	cmd.Flags().StringVar(&opts.XLabel, "x-label", "", "x axis label")
	cmd.Flags().StringVar(&opts.YLabel, "y-label", "", "y axis label")
	cmd.Flags().IntVar(&opts.Width, "width", series.DefaultWidth, "image width")
	cmd.Flags().IntVar(&opts.Height, "height", series.DefaultHeight, "image height")
	cmd.Flags().StringSliceVar(&opts.Palette, "palette", nil, "series colors (comma-separated)")

	return cmd
}

func (c *CLI) runChart(ctx context.Context, kind, input, output string, opts series.Options) error {
	logger := loggerFromContext(ctx)

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + series.FormatSVG
	}
	opts.Format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")

	f, err := os.Open(input)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", input)
		}
		return err
	}
	defer f.Close()

	var buf bytes.Buffer
	switch kind {
	case chartKindBar:
		bars, err := series.ReadBars(f)
		if err != nil {
			return err
		}
		logger.Debug("loaded bars", "count", len(bars))
		err = series.RenderBars(&buf, bars, opts)
		if err != nil {
			return err
		}
	default:
		data, err := series.ReadSeries(f)
		if err != nil {
			return err
		}
		logger.Debug("loaded series", "count", len(data))
		if err := series.Render(&buf, series.Kind(kind), data, opts); err != nil {
			return err
		}
	}

	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	return nil
}
