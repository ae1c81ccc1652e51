package logging

import (
	"log/slog"
	"time"
)

// Standardized structured logging keys shared across components.
const (
	// FieldComponent names the originating component.
	FieldComponent = "component"
	// FieldJobID carries the remote ingest job identifier.
	FieldJobID = "job_id"
	// FieldAssetID carries an asset identifier.
	FieldAssetID = "asset_id"
	// FieldEnvironment carries the target ingest environment.
	FieldEnvironment = "environment"
)

type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}
