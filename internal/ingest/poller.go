package ingest

import (
	"context"
	"fmt"
	"time"

	"iiifingest/internal/errs"
	"iiifingest/internal/logging"
)

// Job states reported by the service. Anything else is a protocol
// violation and aborts polling immediately.
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// PingOptions bounds the polling loop. The hard cap on wall time is
// MaxPings x Interval; there is no other cancellation mechanism
// besides the caller's context.
type PingOptions struct {
	MaxPings int
	Interval time.Duration
}

// PingResult reports the outcome of a polling session.
type PingResult struct {
	Completed bool
	JobStatus string
	JobID     string
	Endpoint  string
	Pings     int
	Elapsed   time.Duration
	Message   string
	// Raw holds the last response payload, kept for diagnosis when the
	// loop aborts on an unrecognized status.
	Raw map[string]any
}

// Ping polls the job until it reaches a terminal state or the ping
// budget runs out. Polling is strictly sequential: the next request
// is not issued until the previous response has been classified and
// the interval has elapsed. A queued job is treated exactly like a
// running one.
func (s *Service) Ping(ctx context.Context, jobID string, opts PingOptions) (PingResult, error) {
	if opts.MaxPings <= 0 {
		opts.MaxPings = 25
	}
	if opts.Interval < 0 {
		opts.Interval = 0
	}

	logger := s.logger.With(
		logging.String(logging.FieldComponent, "ingest-poller"),
		logging.String(logging.FieldJobID, jobID))

	result := PingResult{JobID: jobID, Endpoint: s.jobEndpoint}
	start := time.Now()

	for {
		result.Pings++
		payload, err := s.jobStatus(ctx, jobID)
		result.Elapsed = time.Since(start)
		if err != nil {
			result.Message = fmt.Sprintf("job %s status poll failed after %d pings", jobID, result.Pings)
			return result, err
		}
		result.Raw = payload
		result.JobStatus = jobStatusOf(payload)

		switch result.JobStatus {
		case StatusSuccess:
			result.Completed = true
			result.Message = fmt.Sprintf("job %s finished ingesting after %s and %d pings", jobID, result.Elapsed.Round(time.Second), result.Pings)
			logger.Info("job completed", logging.Int("pings", result.Pings), logging.Duration("elapsed", result.Elapsed))
			return result, nil

		case StatusFailed:
			result.Message = fmt.Sprintf("job %s failed after %s and %d pings", jobID, result.Elapsed.Round(time.Second), result.Pings)
			logger.Warn("job failed", logging.Int("pings", result.Pings), logging.Duration("elapsed", result.Elapsed))
			return result, nil

		case StatusRunning, StatusQueued:
			if result.Pings > opts.MaxPings {
				result.Message = fmt.Sprintf("job %s did not complete within %s and %d pings (max pings %d)", jobID, result.Elapsed.Round(time.Second), result.Pings, opts.MaxPings)
				logger.Warn("ping budget exhausted", logging.Int("pings", result.Pings), logging.Int("max_pings", opts.MaxPings))
				return result, nil
			}
			logger.Debug("job still processing",
				logging.String("job_status", result.JobStatus),
				logging.Int("pings", result.Pings))
			if err := sleep(ctx, opts.Interval); err != nil {
				result.Message = fmt.Sprintf("job %s polling canceled after %d pings", jobID, result.Pings)
				return result, err
			}

		default:
			result.Message = fmt.Sprintf("job %s delivered an invalid status %q after %d pings", jobID, result.JobStatus, result.Pings)
			return result, errs.Wrap(errs.ErrProtocol, nil, "ingest", fmt.Sprintf("unexpected job status %q in payload %v", result.JobStatus, payload))
		}
	}
}

func jobStatusOf(payload map[string]any) string {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return ""
	}
	status, _ := data["job_status"].(string)
	return status
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
