package client

import (
	"context"

	"golang.org/x/sync/errgroup"

	"iiifingest/internal/asset"
	"iiifingest/internal/errs"
	"iiifingest/internal/identity"
	"iiifingest/internal/logging"
)

// ImageInput describes one image to upload. Exactly one of Filepath
// and Buffer must be set.
type ImageInput struct {
	Filepath string
	Buffer   []byte
	// ID is the caller-chosen identifier portion of the asset id; the
	// configured asset prefix and, by default, a random suffix are
	// added around it.
	ID string
	// Name becomes the asset label.
	Name     string
	Metadata []asset.MetadataEntry
}

// UploadOptions adjusts a single upload batch.
type UploadOptions struct {
	// PathPrefix overrides upload.path_prefix from config.
	PathPrefix string
	// WithoutRandomSuffix derives deterministic asset ids, enabling
	// safe re-upload of the same batch to the same identifiers.
	WithoutRandomSuffix bool
}

// Upload derives asset identities, probes the images, and uploads
// them to the ingest bucket. Uploads run in parallel up to the
// configured concurrency, but the returned slice always follows the
// input order, because canvas order is page order.
func (c *Client) Upload(ctx context.Context, images []ImageInput, opts UploadOptions) ([]*asset.Asset, error) {
	pathPrefix := opts.PathPrefix
	if pathPrefix == "" {
		pathPrefix = c.cfg.Upload.PathPrefix
	}

	c.logger.Debug("uploading images",
		logging.String(logging.FieldComponent, "client"),
		logging.Int("count", len(images)))

	// Identity derivation and probing stay sequential so that any
	// validation failure surfaces before the first byte is uploaded.
	assets := make([]*asset.Asset, len(images))
	for i, image := range images {
		assetID, err := identity.New(c.cfg.Ingest.AssetPrefix, image.ID, !opts.WithoutRandomSuffix)
		if err != nil {
			return nil, err
		}
		overrides := asset.Overrides{
			AssetID:  assetID,
			Label:    image.Name,
			Metadata: image.Metadata,
		}
		var a *asset.Asset
		switch {
		case image.Filepath != "":
			a, err = asset.FromFile(image.Filepath, overrides)
		case image.Buffer != nil:
			a, err = asset.FromBuffer(image.Buffer, overrides)
		default:
			err = errs.Wrap(errs.ErrValidation, nil, "client", "image input needs a filepath or a buffer")
		}
		if err != nil {
			return nil, err
		}
		assets[i] = a
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.Upload.Concurrency)
	for _, a := range assets {
		a := a
		group.Go(func() error {
			key, err := a.Upload(groupCtx, c.store, c.bucketName, pathPrefix)
			if err != nil {
				return err
			}
			c.logger.Debug("image uploaded",
				logging.String(logging.FieldComponent, "client"),
				logging.String(logging.FieldAssetID, a.AssetID),
				logging.String("storage_key", key))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return assets, nil
}
