package cli

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/poller"
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		server      string
		interval    time.Duration
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch <resource-id>:<job-type>...",
		Short: "Follow jobs in a live table",
		Long: `Show a live table of polled jobs. Jobs can be cancelled (x), stopped (s)
and polled again (r) from the table. Outcomes are recorded like "optima poll".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseJobRefs(args)
			if err != nil {
				return err
			}
			return withMetrics(cmd.Context(), metricsAddr, c.Logger, func(ctx context.Context) error {
				return c.runWatch(ctx, refs, server, interval)
			})
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server base URL (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "delay between checks (default from config by job type)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while watching")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, refs []jobRef, server string, interval time.Duration) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	client, err := c.newJobClient(server)
	if err != nil {
		return err
	}
	cc, err := c.newCache(ctx, false)
	if err != nil {
		return err
	}
	defer cc.Close()
	hist := newHistory(cc)

	reg := c.newRegistry(client, cfg.Poll.Interval)
	defer reg.Close()

	// Log output would tear the table.
	level := c.Logger.GetLevel()
	c.Logger.SetLevel(LogError)
	defer c.Logger.SetLevel(level)

	refresh := interval
	if refresh <= 0 {
		refresh = cfg.Poll.Interval
	}
	m := newWatchModel(reg, refs, nil, refresh)
	m.delay = func(r jobRef) time.Duration { return pollDelay(r, interval, cfg.Poll) }
	p := tea.NewProgram(m, tea.WithContext(ctx))

	m.callback = func(id string) poller.Callback {
		return func(u poller.Update) {
			p.Send(updateMsg{id: id, update: u, at: time.Now()})
		}
	}
	m.onTerminal = func(ev pollEvent, checks int) {
		row := m.row(ev.id)
		if err := hist.record(ctx, newOutcome(ev.id, row.target, ev.update, checks, ev.at)); err != nil {
			m.message = "record outcome: " + err.Error()
		}
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
