package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/errors"
	"github.com/matzehuels/optima/pkg/jobapi"
	"github.com/matzehuels/optima/pkg/poller"
)

// pollOpts holds the flags of the poll command.
type pollOpts struct {
	start       bool
	noHistory   bool
	url         string
	server      string
	interval    time.Duration
	timeout     time.Duration
	metricsAddr string
}

// pollEvent is one update delivered by the registry.
type pollEvent struct {
	id     string
	update poller.Update
	at     time.Time
}

// pollCommand creates the poll command.
func (c *CLI) pollCommand() *cobra.Command {
	var opts pollOpts

	cmd := &cobra.Command{
		Use:   "poll <resource-id>:<job-type>...",
		Short: "Poll jobs until they finish",
		Long: `Poll one or more jobs until each reaches a terminal state.

Every status change is printed. The final outcome of each job is recorded
and can be shown later with "optima status".`,
		Example: `  optima poll 42:optimize
  optima poll --start 42:optimize 42:autofit
  optima poll --url /api/project/p1/optimizations/42/results 42:optimize`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseJobRefs(args)
			if err != nil {
				return err
			}
			if opts.url != "" && len(refs) > 1 {
				return errors.New(errors.ErrCodeInvalidInput, "--url needs exactly one job")
			}
			return withMetrics(cmd.Context(), opts.metricsAddr, c.Logger, func(ctx context.Context) error {
				return c.runPoll(ctx, refs, opts)
			})
		},
	}

	cmd.Flags().BoolVar(&opts.start, "start", false, "start the jobs before polling")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not record outcomes")
	cmd.Flags().StringVar(&opts.url, "url", "", "status path or URL to poll instead of the task endpoint")
	cmd.Flags().StringVar(&opts.server, "server", "", "server base URL (default from config)")
	cmd.Flags().DurationVar(&opts.interval, "interval", 0, "delay between checks (default from config by job type)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up after this long (0 waits forever)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while polling")

	return cmd
}

func (c *CLI) runPoll(ctx context.Context, refs []jobRef, opts pollOpts) error {
	cfg, err := c.config()
	if err != nil {
		return err
	}
	client, err := c.newJobClient(opts.server)
	if err != nil {
		return err
	}
	cc, err := c.newCache(ctx, opts.noHistory)
	if err != nil {
		return err
	}
	defer cc.Close()
	hist := newHistory(cc)

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	reg := c.newRegistry(client, cfg.Poll.Interval)
	defer reg.Close()
	// Cancelled before Close so callbacks blocked on send return.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pollEvent, len(refs))
	targets := make(map[string]string, len(refs))
	for _, ref := range refs {
		target := ref.Path()
		if opts.url != "" {
			target = opts.url
		}
		if opts.start {
			if err := startJob(ctx, client, ref); err != nil {
				return err
			}
		}

		id := ref.ID()
		targets[id] = target
		err := reg.StartPoll(id, target, func(u poller.Update) {
			select {
			case events <- pollEvent{id: id, update: u, at: time.Now()}:
			case <-ctx.Done():
			}
		}, poller.Every(pollDelay(ref, opts.interval, cfg.Poll)))
		if err != nil {
			return err
		}
	}

	last := make(map[string]string, len(refs))
	pending := len(refs)
	var failed error
	for pending > 0 {
		select {
		case <-ctx.Done():
			reg.StopPolls()
			if ctx.Err() == context.DeadlineExceeded {
				return errors.New(errors.ErrCodeTimeout, "%d job(s) still running after %s", pending, opts.timeout)
			}
			return ctx.Err()

		case ev := <-events:
			status := ev.update.Status()
			if !ev.update.Terminal() {
				if last[ev.id] != status {
					printInfo("%s %s", ev.id, statusStyle(status).Render(status))
					last[ev.id] = status
				}
				continue
			}
			pending--

			o := newOutcome(ev.id, targets[ev.id], ev.update, checksOf(reg, ev.id), ev.at)
			if err := hist.record(ctx, o); err != nil {
				c.Logger.Warn("record outcome failed", "job", ev.id, "error", err)
			}

			switch u := ev.update.(type) {
			case poller.Completed:
				printSuccess("%s completed", ev.id)
				if o.ResultID != "" {
					printDetail("result %s", o.ResultID)
				}
			case poller.Failed:
				printError("%s failed: %s", ev.id, u.Reason())
				if failed == nil {
					failed = u.AsError(ev.id)
				}
			}
		}
	}

	if failed == nil && len(refs) == 1 && !opts.noHistory {
		printNextStep("Show outcome", appName+" status "+refs[0].ID())
	}
	return failed
}

func startJob(ctx context.Context, client *jobapi.Client, ref jobRef) error {
	p, err := client.Start(ctx, ref.ResourceID, ref.JobType)
	if err != nil {
		return err
	}
	printInfo("%s %s", ref.ID(), statusStyle(p.Status).Render("launched ("+p.Status+")"))
	return nil
}

func checksOf(reg *poller.Registry, id string) int {
	for _, e := range reg.Snapshot() {
		if e.ID == id {
			return e.Checks
		}
	}
	return 0
}
