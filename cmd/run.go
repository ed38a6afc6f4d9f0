package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Summarise every triggered message once",
		Long: `Search the mailbox for threads carrying the trigger label (or starred
messages), mail a summary for each message and clear the trigger.

A failure stops the run and leaves the trigger on the failed thread, so the
next run retries it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer a.shutdown()

			res, err := a.scanner.Scan(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Processed %d messages in %d threads (%d skipped)\n",
				res.Messages, res.Threads, res.Skipped)
			return err
		},
	}

	addScanFlags(cmd)
	return cmd
}
