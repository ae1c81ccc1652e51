package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"iiifingest/internal/client"
	"iiifingest/internal/manifest"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var ids []string
	var names []string
	var metadataPath string
	var manifestName string
	var pathPrefix string
	var noManifest bool
	var noRandomSuffix bool
	var track bool

	cmd := &cobra.Command{
		Use:   "ingest <image>...",
		Short: "Upload images, build a manifest, and submit an ingest job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, cleanup, err := ctx.buildClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			meta, err := loadManifestMetadata(metadataPath)
			if err != nil {
				return err
			}

			assets, err := cl.Upload(cmd.Context(), imageInputs(args, ids, names), client.UploadOptions{
				PathPrefix:          pathPrefix,
				WithoutRandomSuffix: noRandomSuffix,
			})
			if err != nil {
				return err
			}
			for _, a := range assets {
				fmt.Fprintf(cmd.ErrOrStderr(), "uploaded %s (%dx%d)\n", a.AssetID, a.Width, a.Height)
			}

			var doc *manifest.Manifest
			if !noManifest {
				doc, _, err = cl.CreateManifest(meta, assets, manifestName, 0)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "manifest id: %s\n", doc.ID)
			}

			if ctx.dryRun() {
				fmt.Fprintln(cmd.ErrOrStderr(), "dry run: skipping ingest submission")
				if doc != nil {
					return printJSON(cmd.OutOrStdout(), doc)
				}
				return nil
			}

			result, err := cl.Ingest(cmd.Context(), assets, doc, nil)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job id: %s\n", result.JobID)

			if track && result.JobID != "" {
				ping, err := cl.JobStatus(cmd.Context(), result.JobID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ping.Message)
				if !ping.Completed && ping.JobStatus == "failed" {
					return fmt.Errorf("job %s failed", result.JobID)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "id", nil, "Identifier for the matching positional image (repeatable)")
	cmd.Flags().StringSliceVar(&names, "name", nil, "Label for the matching positional image (repeatable)")
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "Manifest metadata JSON file")
	cmd.Flags().StringVar(&manifestName, "manifest-name", "", "Manifest name (defaults to a generated GEN name)")
	cmd.Flags().StringVar(&pathPrefix, "path-prefix", "", "Object key prefix inside the bucket")
	cmd.Flags().BoolVar(&noManifest, "no-manifest", false, "Register the assets without a manifest")
	cmd.Flags().BoolVar(&noRandomSuffix, "no-random-suffix", false, "Derive deterministic asset ids without a random suffix")
	cmd.Flags().BoolVar(&track, "track", false, "Poll the job status until it completes or the ping budget runs out")

	return cmd
}
