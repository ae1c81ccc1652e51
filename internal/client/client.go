// Package client orchestrates one ingest operation end to end:
// upload the images, build the manifest, assemble and submit the
// ingest request, and poll the resulting job.
package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"iiifingest/internal/auth"
	"iiifingest/internal/config"
	"iiifingest/internal/errs"
	"iiifingest/internal/ingest"
	"iiifingest/internal/joblog"
	"iiifingest/internal/logging"
	"iiifingest/internal/storage"
)

// Options bundles the collaborators for New. Config, Store, and
// Credentials are required; the rest defaults sensibly.
type Options struct {
	Config      *config.Config
	Store       storage.Store
	Credentials *auth.Credentials
	// Service overrides the ingest API client built from config.
	Service *ingest.Service
	// Proxy, when set, routes ingest traffic through a SigV4-signing
	// reverse proxy. Ignored when Service is supplied.
	Proxy *ingest.ProxySigner
	// JobLog, when set, records every submission and outcome.
	JobLog     *joblog.Store
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client is safe for use by one ingest operation at a time; separate
// operations should use separate Client values or rely on the fact
// that Client itself holds no per-operation state.
type Client struct {
	cfg         *config.Config
	store       storage.Store
	credentials *auth.Credentials
	service     *ingest.Service
	jobLog      *joblog.Store
	logger      *slog.Logger
	location    *time.Location

	bucketName      string
	assetBaseURL    string
	manifestBaseURL string
	ingestEndpoint  string
	jobEndpoint     string
}

// New validates the tenant settings and derives the environment URLs.
func New(opts Options) (*Client, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "client", "config is required")
	}
	if opts.Store == nil {
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "client", "store is required")
	}
	if opts.Credentials == nil {
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "client", "credentials are required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	namespace := cfg.Ingest.Namespace
	if namespace == "" || !isAlnum(namespace) {
		return nil, errs.Wrap(errs.ErrValidation, nil, "client", fmt.Sprintf("invalid or missing namespace %q", namespace))
	}
	environment := cfg.Ingest.Environment
	if !validEnvironment(environment) {
		return nil, errs.Wrap(errs.ErrValidation, nil, "client",
			fmt.Sprintf("invalid environment %q, must be one of %s", environment, strings.Join(config.ValidEnvironments, ", ")))
	}

	timezone := cfg.Auth.Timezone
	if timezone == "" {
		timezone = "America/New_York"
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, err, "client", "load timezone")
	}

	// The dev environment lives on the private network and uses the
	// private endpoint templates.
	ingestEndpoint := cfg.ExpandTemplate(cfg.Endpoints.IngestURL)
	jobEndpoint := cfg.ExpandTemplate(cfg.Endpoints.JobStatusURL)
	if environment == "dev" {
		ingestEndpoint = cfg.ExpandTemplate(cfg.Endpoints.IngestURLPrivate)
		jobEndpoint = cfg.ExpandTemplate(cfg.Endpoints.JobStatusPrivate)
	}

	service := opts.Service
	if service == nil {
		service, err = ingest.NewService(ingest.ServiceConfig{
			IngestEndpoint:    ingestEndpoint,
			JobStatusEndpoint: jobEndpoint,
			HTTPClient:        opts.HTTPClient,
			Logger:            logger,
			Proxy:             opts.Proxy,
		})
		if err != nil {
			return nil, err
		}
	}

	return &Client{
		cfg:             cfg,
		store:           opts.Store,
		credentials:     opts.Credentials,
		service:         service,
		jobLog:          opts.JobLog,
		logger:          logger.With(logging.String(logging.FieldEnvironment, environment)),
		location:        location,
		bucketName:      cfg.ExpandTemplate(cfg.Endpoints.BucketName),
		assetBaseURL:    cfg.ExpandTemplate(cfg.Endpoints.AssetBaseURL),
		manifestBaseURL: cfg.ExpandTemplate(cfg.Endpoints.ManifestBaseURL),
		ingestEndpoint:  ingestEndpoint,
		jobEndpoint:     jobEndpoint,
	}, nil
}

// BucketName returns the derived upload bucket.
func (c *Client) BucketName() string { return c.bucketName }

// AssetPrefix returns the configured asset id prefix.
func (c *Client) AssetPrefix() string { return c.cfg.Ingest.AssetPrefix }

// AssetURL returns the public delivery URL for an asset id.
func (c *Client) AssetURL(assetID string) string {
	return c.assetBaseURL + assetID
}

// ManifestURL returns the delivery URL for a named manifest.
func (c *Client) ManifestURL(manifestName string, preziVersion int) string {
	if preziVersion <= 0 {
		preziVersion = 3
	}
	return fmt.Sprintf("%s%s:MANIFEST:%d", c.manifestBaseURL, manifestName, preziVersion)
}

func (c *Client) qualifiedIdentifier(assetID string) string {
	return strings.ToUpper(c.cfg.Ingest.Namespace) + ":" + assetID
}

func validEnvironment(env string) bool {
	for _, valid := range config.ValidEnvironments {
		if env == valid {
			return true
		}
	}
	return false
}

func isAlnum(s string) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		default:
			return false
		}
	}
	return true
}
