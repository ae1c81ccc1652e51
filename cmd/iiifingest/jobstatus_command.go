package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newJobStatusCommand(ctx *commandContext) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "jobstatus <job-id>",
		Short: "Poll an ingest job until it finishes or the ping budget runs out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, cleanup, err := ctx.buildClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := cl.JobStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if raw {
				return printJSON(cmd.OutOrStdout(), result.Raw)
			}

			rows := [][]string{{
				result.JobID,
				result.JobStatus,
				fmt.Sprintf("%t", result.Completed),
				fmt.Sprintf("%d", result.Pings),
				result.Elapsed.Round(time.Second).String(),
			}}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "Status", "Completed", "Pings", "Elapsed"}, rows, 4, 5))
			if result.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print the final raw status payload as JSON")

	return cmd
}
