package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"iiifingest/internal/errs"
	"iiifingest/internal/logging"
)

const defaultHTTPTimeout = 60 * time.Second

// ServiceConfig describes an ingest API endpoint pair.
type ServiceConfig struct {
	IngestEndpoint    string
	JobStatusEndpoint string
	HTTPClient        *http.Client
	Logger            *slog.Logger
	// Proxy enables SigV4 request re-signing through a reverse proxy.
	Proxy *ProxySigner
}

// Service submits ingest requests and reports job status.
type Service struct {
	ingestEndpoint string
	jobEndpoint    string
	http           *http.Client
	logger         *slog.Logger
	proxy          *ProxySigner
}

// NewService creates a Service from the supplied configuration.
func NewService(cfg ServiceConfig) (*Service, error) {
	ingestEndpoint := strings.TrimSpace(cfg.IngestEndpoint)
	if ingestEndpoint == "" {
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "ingest", "ingest endpoint is required")
	}
	jobEndpoint := strings.TrimSpace(cfg.JobStatusEndpoint)
	if jobEndpoint == "" {
		return nil, errs.Wrap(errs.ErrConfiguration, nil, "ingest", "jobstatus endpoint is required")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		ingestEndpoint: ingestEndpoint,
		jobEndpoint:    jobEndpoint,
		http:           client,
		logger:         logger,
		proxy:          cfg.Proxy,
	}, nil
}

// SubmitResult is the parsed ingest response.
type SubmitResult struct {
	// JobID is empty when the service did not return a tracker id,
	// which usually means the request failed server-side.
	JobID string
	Error any
	Data  map[string]any
}

// Submit posts the request envelope with a bearer token and parses
// the job tracker id out of the response.
func (s *Service) Submit(ctx context.Context, req Request, token string) (SubmitResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("ingest: encode request: %w", err)
	}

	httpReq, err := s.newSubmitRequest(ctx, body, token)
	if err != nil {
		return SubmitResult{}, err
	}

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("ingest: send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("ingest: read response: %w", err)
	}
	s.logger.Debug("ingest response received",
		logging.String(logging.FieldComponent, "ingest"),
		logging.Int("status", resp.StatusCode),
		logging.Int("bytes", len(payload)))

	var parsed struct {
		Data  map[string]any `json:"data"`
		Error any            `json:"error"`
	}
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return SubmitResult{}, errs.Wrap(errs.ErrProtocol, err, "ingest", "decode response "+snippet(payload))
	}

	result := SubmitResult{
		JobID: extractJobID(parsed.Data),
		Error: parsed.Error,
		Data:  parsed.Data,
	}
	if result.JobID == "" {
		s.logger.Warn("ingest job id not found, the ingest request may have failed",
			logging.String(logging.FieldComponent, "ingest"),
			logging.Int("status", resp.StatusCode))
	} else {
		s.logger.Info("ingest job submitted",
			logging.String(logging.FieldComponent, "ingest"),
			logging.String(logging.FieldJobID, result.JobID))
	}
	return result, nil
}

func (s *Service) newSubmitRequest(ctx context.Context, body []byte, token string) (*http.Request, error) {
	if s.proxy != nil {
		return s.proxy.NewIngestRequest(ctx, body, token)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.ingestEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ingest: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)
	return httpReq, nil
}

// jobStatus issues a single status poll and returns the decoded
// payload.
func (s *Service) jobStatus(ctx context.Context, jobID string) (map[string]any, error) {
	var httpReq *http.Request
	var err error
	if s.proxy != nil {
		httpReq, err = s.proxy.NewJobStatusRequest(ctx, jobID)
	} else {
		httpReq, err = http.NewRequestWithContext(ctx, http.MethodGet, s.jobEndpoint+jobID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: build jobstatus request: %w", err)
	}

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ingest: poll job status: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ingest: read jobstatus response: %w", err)
	}
	var parsed map[string]any
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, errs.Wrap(errs.ErrProtocol, err, "ingest", "decode jobstatus response "+snippet(payload))
	}
	return parsed, nil
}

// extractJobID digs data.job_tracker_file._id out of the response.
func extractJobID(data map[string]any) string {
	tracker, ok := data["job_tracker_file"].(map[string]any)
	if !ok {
		return ""
	}
	id, ok := tracker["_id"]
	if !ok || id == nil {
		return ""
	}
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprint(v)
	}
}

func snippet(payload []byte) string {
	const max = 256
	s := strings.TrimSpace(string(payload))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return fmt.Sprintf("%q", s)
}
