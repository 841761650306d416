package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// statusCommand creates the status command.
func (c *CLI) statusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status [resource-id:job-type...]",
		Short: "Show recorded job outcomes",
		Long: `Show the last outcome recorded by "optima poll" or "optima watch".
Without arguments every recorded job is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStatus(cmd.Context(), args, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print outcomes as JSON")
	return cmd
}

func (c *CLI) runStatus(ctx context.Context, args []string, asJSON bool) error {
	cc, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer cc.Close()
	hist := newHistory(cc)

	ids := args
	if len(ids) == 0 {
		if ids, err = hist.ids(ctx); err != nil {
			return err
		}
	} else {
		refs, err := parseJobRefs(args)
		if err != nil {
			return err
		}
		ids = make([]string, 0, len(refs))
		for _, r := range refs {
			ids = append(ids, r.ID())
		}
	}

	var outcomes []outcome
	var missing []string
	for _, id := range ids {
		o, ok, err := hist.get(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			missing = append(missing, id)
			continue
		}
		outcomes = append(outcomes, o)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcomes)
	}

	if len(outcomes) == 0 && len(missing) == 0 {
		printInfo("No recorded jobs")
		return nil
	}
	switch {
	case len(args) == 1 && len(outcomes) == 1:
		printOutcome(outcomes[0])
	case len(outcomes) > 0:
		fmt.Println(renderOutcomes(outcomes, time.Now()))
	}
	for _, id := range missing {
		printWarning("%s: no recorded outcome", id)
	}
	return nil
}

// printOutcome shows every recorded field of a single job.
func printOutcome(o outcome) {
	fmt.Println(StyleTitle.Render(o.ID))
	printNewline()
	printKeyValue("Status", statusStyle(o.Status).Render(o.Status))
	printKeyValue("URL", o.URL)
	printKeyValue("Checks", StyleNumber.Render(fmt.Sprint(o.Checks)))
	printKeyValue("Finished", o.FinishedAt.Local().Format(time.DateTime))
	if o.ResultID != "" {
		printKeyValue("Result", o.ResultID)
	}
	if o.Reason != "" {
		printKeyValue("Reason", o.Reason)
	}
}

func renderOutcomes(outcomes []outcome, now time.Time) string {
	rows := make([][]string, len(outcomes))
	for i, o := range outcomes {
		detail := o.ResultID
		if o.Reason != "" {
			detail = o.Reason
		}
		finished := formatAge(now.Sub(o.FinishedAt))
		if finished != "now" {
			finished += " ago"
		}
		rows[i] = []string{o.ID, o.Status, fmt.Sprint(o.Checks), finished, detail}
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Job", "Status", "Checks", "Finished", "Detail").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 1 && row < len(outcomes) {
				return statusStyle(outcomes[row].Status)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}
