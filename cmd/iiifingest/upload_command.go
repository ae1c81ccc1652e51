package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"iiifingest/internal/client"
)

func newUploadCommand(ctx *commandContext) *cobra.Command {
	var ids []string
	var names []string
	var pathPrefix string
	var noRandomSuffix bool

	cmd := &cobra.Command{
		Use:   "upload <image>...",
		Short: "Upload images to the ingest bucket without submitting a job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, cleanup, err := ctx.buildClient(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			assets, err := cl.Upload(cmd.Context(), imageInputs(args, ids, names), client.UploadOptions{
				PathPrefix:          pathPrefix,
				WithoutRandomSuffix: noRandomSuffix,
			})
			if err != nil {
				return err
			}

			for _, a := range assets {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  s3://%s/%s  %dx%d %s\n",
					a.AssetID, cl.BucketName(), a.StorageKey, a.Width, a.Height, a.Format)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&ids, "id", nil, "Identifier for the matching positional image (repeatable)")
	cmd.Flags().StringSliceVar(&names, "name", nil, "Label for the matching positional image (repeatable)")
	cmd.Flags().StringVar(&pathPrefix, "path-prefix", "", "Object key prefix inside the bucket")
	cmd.Flags().BoolVar(&noRandomSuffix, "no-random-suffix", false, "Derive deterministic asset ids without a random suffix")

	return cmd
}
