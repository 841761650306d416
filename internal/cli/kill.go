package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/optima/pkg/observability"
)

// killCommand creates the kill command.
func (c *CLI) killCommand() *cobra.Command {
	var server string

	cmd := &cobra.Command{
		Use:   "kill <resource-id>:<job-type>...",
		Short: "Cancel running jobs",
		Long: `Ask the server to cancel jobs. Failed requests are retried with
exponential backoff. A poll on the same job sees the cancellation on its
next check.`,
		Example: `  optima kill 42:optimize`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseJobRefs(args)
			if err != nil {
				return err
			}
			return c.runKill(cmd.Context(), refs, server)
		},
	}

	cmd.Flags().StringVar(&server, "server", "", "server base URL (default from config)")
	return cmd
}

func (c *CLI) runKill(ctx context.Context, refs []jobRef, server string) error {
	client, err := c.newJobClient(server)
	if err != nil {
		return err
	}

	var firstErr error
	for _, ref := range refs {
		spinner := newSpinnerWithContext(ctx, "Cancelling "+ref.ID()+"...")
		spinner.Start()
		err := client.Kill(ctx, ref.ResourceID, ref.JobType)
		observability.Poll().OnKill(ctx, ref.ResourceID, ref.JobType, err)
		if err != nil {
			spinner.StopWithError(ref.ID() + ": " + err.Error())
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		spinner.StopWithSuccess("Cancelled " + ref.ID())
	}
	return firstErr
}
