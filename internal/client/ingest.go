package client

import (
	"context"
	"net/http"
	"path"
	"time"

	"iiifingest/internal/asset"
	"iiifingest/internal/auth"
	"iiifingest/internal/ingest"
	"iiifingest/internal/joblog"
	"iiifingest/internal/logging"
	"iiifingest/internal/manifest"
)

// IngestResult is the parsed outcome of an ingest submission.
type IngestResult struct {
	JobID string
	Error any
	Data  map[string]any
}

// Ingest assembles the request envelope for the uploaded assets,
// mints a token, and submits the request. The manifest may be nil
// when only assets are being registered.
func (c *Client) Ingest(ctx context.Context, assets []*asset.Asset, doc *manifest.Manifest, policyDefinition map[string]any) (IngestResult, error) {
	now := time.Now().In(c.location)

	imageAssets := make([]ingest.ImageAsset, 0, len(assets))
	for _, a := range assets {
		srcPath, srcKey := splitStorageKey(a.StorageKey)
		imageAssets = append(imageAssets, ingest.NewImageAsset(ingest.ImageAssetParams{
			Identifier:       c.qualifiedIdentifier(a.AssetID),
			Space:            c.cfg.Ingest.Space,
			StorageSrcPath:   srcPath,
			StorageSrcKey:    srcKey,
			CreatedByAgent:   c.cfg.Ingest.Agent,
			PolicyDefinition: policyDefinition,
			AssetMetadata:    []ingest.MetadataField{ingest.ImageSize(a.Width, a.Height)},
		}, now))
	}

	token, err := c.credentials.MakeJWT(auth.TokenOptions{})
	if err != nil {
		return IngestResult{}, err
	}

	var manifestDoc any
	if doc != nil {
		manifestDoc = doc
	}
	req := ingest.WrapRequest(nil, imageAssets, manifestDoc, c.cfg.Ingest.Space, "")

	submitted, err := c.service.Submit(ctx, req, token)
	if err != nil {
		return IngestResult{}, err
	}

	if c.jobLog != nil && submitted.JobID != "" {
		manifestURL := ""
		if doc != nil {
			manifestURL = doc.ID
		}
		if _, err := c.jobLog.RecordSubmission(ctx, joblog.Record{
			JobID:       submitted.JobID,
			Environment: c.cfg.Ingest.Environment,
			Space:       c.cfg.Ingest.Space,
			AssetCount:  len(assets),
			ManifestURL: manifestURL,
		}); err != nil {
			c.logger.Warn("failed to record job submission",
				logging.String(logging.FieldComponent, "client"),
				logging.Error(err))
		}
	}

	return IngestResult{JobID: submitted.JobID, Error: submitted.Error, Data: submitted.Data}, nil
}

// JobStatus polls the job until a terminal state or the configured
// ping budget is exhausted, and records the outcome in the job log.
func (c *Client) JobStatus(ctx context.Context, jobID string) (ingest.PingResult, error) {
	result, err := c.service.Ping(ctx, jobID, ingest.PingOptions{
		MaxPings: c.cfg.Poll.MaxPings,
		Interval: time.Duration(c.cfg.Poll.IntervalSeconds) * time.Second,
	})

	if c.jobLog != nil && result.Pings > 0 {
		status := result.JobStatus
		if status == "" {
			status = "unknown"
		}
		if logErr := c.jobLog.RecordOutcome(ctx, jobID, status, result.Pings, result.Elapsed, result.Message); logErr != nil {
			c.logger.Warn("failed to record job outcome",
				logging.String(logging.FieldComponent, "client"),
				logging.Error(logErr))
		}
	}
	return result, err
}

// ValidateManifest checks a built manifest against the configured
// schema document. Best effort: callers usually log rather than fail
// on a validation error.
func (c *Client) ValidateManifest(ctx context.Context, doc *manifest.Manifest, httpClient *http.Client) error {
	schemaJSON, err := manifest.FetchSchema(ctx, httpClient, c.cfg.Endpoints.ManifestSchemaURL)
	if err != nil {
		return err
	}
	manifestJSON, err := doc.JSON()
	if err != nil {
		return err
	}
	return manifest.ValidateSchema(manifestJSON, schemaJSON)
}

// splitStorageKey separates an object key into the directory portion
// (with trailing slash) and the file name, the two fields the ingest
// API expects.
func splitStorageKey(key string) (srcPath, srcKey string) {
	dir, file := path.Split(key)
	return dir, file
}
