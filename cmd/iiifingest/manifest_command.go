package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"iiifingest/internal/asset"
	"iiifingest/internal/identity"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var ids []string
	var names []string
	var metadataPath string
	var manifestName string
	var outputPath string
	var noRandomSuffix bool
	var validate bool

	cmd := &cobra.Command{
		Use:   "manifest <image>...",
		Short: "Build a presentation manifest for local images without uploading",
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

			// Probe locally so the manifest can be inspected before any
			// bytes leave the machine.
			inputs := imageInputs(args, ids, names)
			assets := make([]*asset.Asset, 0, len(inputs))
			for _, input := range inputs {
				assetID, err := identity.New(cl.AssetPrefix(), input.ID, !noRandomSuffix)
				if err != nil {
					return err
				}
				a, err := asset.FromFile(input.Filepath, asset.Overrides{
					AssetID: assetID,
					Label:   input.Name,
				})
				if err != nil {
					return err
				}
				assets = append(assets, a)
			}

			doc, manifestURL, err := cl.CreateManifest(meta, assets, manifestName, 0)
			if err != nil {
				return err
			}

			if validate {
				httpClient := &http.Client{Timeout: 30 * time.Second}
				if err := cl.ValidateManifest(cmd.Context(), doc, httpClient); err != nil {
					return fmt.Errorf("manifest failed schema validation: %w", err)
				}
				fmt.Fprintln(cmd.ErrOrStderr(), "manifest passed schema validation")
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "manifest id: %s\n", manifestURL)
			if outputPath != "" {
				data, err := doc.JSON()
				if err != nil {
					return err
				}
				return os.WriteFile(outputPath, data, 0o644)
			}
			return printJSON(cmd.OutOrStdout(), doc)
		},
	}

	cmd.Flags().StringSliceVar(&ids, "id", nil, "Identifier for the matching positional image (repeatable)")
	cmd.Flags().StringSliceVar(&names, "name", nil, "Label for the matching positional image (repeatable)")
	cmd.Flags().StringVar(&metadataPath, "metadata", "", "Manifest metadata JSON file")
	cmd.Flags().StringVar(&manifestName, "manifest-name", "", "Manifest name (defaults to a generated GEN name)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the manifest JSON to a file instead of stdout")
	cmd.Flags().BoolVar(&noRandomSuffix, "no-random-suffix", false, "Derive deterministic asset ids without a random suffix")
	cmd.Flags().BoolVar(&validate, "validate", false, "Validate the manifest against the configured schema")

	return cmd
}
