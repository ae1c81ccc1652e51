package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"iiifingest/internal/errs"
)

const proxyService = "execute-api"

// ProxySigner routes ingest traffic through a reverse proxy that
// authenticates with SigV4 request signatures instead of bearer
// headers. The bearer token still travels to the ingest service, but
// inside the request body; the proxy strips the wrapper and forwards
// the original envelope.
type ProxySigner struct {
	baseURL     string
	environment string
	region      string
	credentials aws.CredentialsProvider
	signer      *v4.Signer
}

// NewProxySigner builds a signer from the default AWS credential
// chain.
func NewProxySigner(ctx context.Context, proxyURL, environment, region string) (*ProxySigner, error) {
	proxyURL = strings.TrimRight(strings.TrimSpace(proxyURL), "/")
	if proxyURL == "" {
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "ingest", "proxy url is required")
	}
	if region == "" {
		region = "us-east-1"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errs.Wrap(errs.ErrConfiguration, err, "ingest", "load aws config for proxy signing")
	}
	return &ProxySigner{
		baseURL:     proxyURL,
		environment: environment,
		region:      region,
		credentials: cfg.Credentials,
		signer:      v4.NewSigner(),
	}, nil
}

// NewIngestRequest wraps the envelope with the bearer token, targets
// {proxy}/{environment}/ingest, and signs the result.
func (p *ProxySigner) NewIngestRequest(ctx context.Context, envelope []byte, token string) (*http.Request, error) {
	wrapped, err := json.Marshal(struct {
		Token   string          `json:"token"`
		Request json.RawMessage `json:"request"`
	}{Token: token, Request: envelope})
	if err != nil {
		return nil, fmt.Errorf("ingest: wrap proxy request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/ingest", p.baseURL, p.environment)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(wrapped))
	if err != nil {
		return nil, fmt.Errorf("ingest: build proxy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := p.sign(ctx, req, wrapped); err != nil {
		return nil, err
	}
	return req, nil
}

// NewJobStatusRequest targets {proxy}/{environment}/jobstatus/{jobID}
// and signs the result.
func (p *ProxySigner) NewJobStatusRequest(ctx context.Context, jobID string) (*http.Request, error) {
	url := fmt.Sprintf("%s/%s/jobstatus/%s", p.baseURL, p.environment, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ingest: build proxy jobstatus request: %w", err)
	}
	if err := p.sign(ctx, req, nil); err != nil {
		return nil, err
	}
	return req, nil
}

func (p *ProxySigner) sign(ctx context.Context, req *http.Request, body []byte) error {
	sum := sha256.Sum256(body)
	payloadHash := hex.EncodeToString(sum[:])

	credentials, err := p.credentials.Retrieve(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrConfiguration, err, "ingest", "retrieve aws credentials")
	}
	if err := p.signer.SignHTTP(ctx, credentials, req, payloadHash, proxyService, p.region, time.Now()); err != nil {
		return fmt.Errorf("ingest: sign proxy request: %w", err)
	}
	return nil
}
