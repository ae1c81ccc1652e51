package testsupport

import (
	"path/filepath"
	"testing"

	"iiifingest/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a complete qa tenant and a
// freshly generated signing key, so tests never touch the real
// environment templates or key material.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Ingest.Account = "testacct"
	cfg.Ingest.Space = "testspace"
	cfg.Ingest.Namespace = "testns"
	cfg.Ingest.AssetPrefix = "tst"
	cfg.Ingest.Environment = "qa"

	cfg.Auth.Issuer = "testissuer"
	cfg.Auth.KeyID = "testissuerdefault"
	cfg.Auth.PrivateKey = RSAPrivateKeyPEM(t)
	cfg.Auth.Resources = []string{"ingest"}

	cfg.Upload.Concurrency = 2
	cfg.Poll.MaxPings = 2
	cfg.Poll.IntervalSeconds = 0
	cfg.JobLog.Enabled = false
	cfg.JobLog.Path = filepath.Join(t.TempDir(), "jobs.db")

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config failed validation: %v", err)
	}
	return &cfg
}
