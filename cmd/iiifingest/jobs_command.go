package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"iiifingest/internal/joblog"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List recently submitted ingest jobs from the local job log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.JobLog.Enabled {
				return fmt.Errorf("job log is disabled; enable [job_log] in the configuration")
			}

			store, err := joblog.Open(cfg.JobLog.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no jobs recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				completed := ""
				if !rec.CompletedAt.IsZero() {
					completed = rec.CompletedAt.Local().Format("2006-01-02 15:04:05")
				}
				rows = append(rows, []string{
					rec.JobID,
					rec.Environment,
					rec.Space,
					fmt.Sprintf("%d", rec.AssetCount),
					rec.FinalStatus,
					rec.SubmittedAt.Local().Format("2006-01-02 15:04:05"),
					completed,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Job", "Env", "Space", "Assets", "Status", "Submitted", "Completed"}, rows, 4))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of jobs to show")

	return cmd
}
